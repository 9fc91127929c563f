package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/alagaddonjuan/q4icoms/config"
	"github.com/alagaddonjuan/q4icoms/controller"
	"github.com/alagaddonjuan/q4icoms/menu"
	"github.com/alagaddonjuan/q4icoms/payments"
	"github.com/alagaddonjuan/q4icoms/routes"
	"github.com/alagaddonjuan/q4icoms/store"
	"github.com/alagaddonjuan/q4icoms/telco"
	"github.com/alagaddonjuan/q4icoms/utils"
)

func main() {
	fmt.Println("Hello - q4icoms-gateway: 3000")
	utils.InitializeViper("config", "yml")
	config.InitializeConfig()
	config.ConnectDb()
	defer config.DB.Close()
	config.MigrateDb("file://migrations")

	stores := store.New(config.DB, config.Redis, config.Billing)
	telcoClient := telco.New(
		viper.GetString("telco.base_url"),
		viper.GetString("telco.username"),
		viper.GetString("telco.api_key"),
	)
	paymentsClient := payments.New(
		viper.GetString("paystack.base_url"),
		viper.GetString("paystack.secret_key"),
	)
	controller.Setup(stores, menu.BuiltinRegistry(), telcoClient, paymentsClient)

	server := routes.InitRoutes()
	port := viper.GetInt("port")
	if port == 0 {
		port = 3000
	}
	if err := server.Listen(fmt.Sprintf("0.0.0.0:%d", port)); err != nil {
		panic(fmt.Sprintf("server listen failed: %v", err))
	}
}
