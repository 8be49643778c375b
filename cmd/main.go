package main

import (
	"fmt"
	"os"

	_ "auth-service/docs"

	"github.com/spf13/cobra"
)

// @title Auth service
// @version 2.0
// @description Регистрация, вход, ротация refresh токенов и сброс пароля
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer <access_token>
func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "auth-service",
		Short:         "Сервис аутентификации: JWT, refresh токены, сброс пароля",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "путь к YAML конфигурации")

	root.AddCommand(newServeCommand(&configPath))
	root.AddCommand(newMigrateCommand(&configPath))

	return root
}
