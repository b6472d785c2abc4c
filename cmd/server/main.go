package main

import (
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sociolens/sociolens/server"
	"github.com/sociolens/sociolens/utils"
	"github.com/sociolens/sociolens/utils/dotenv"
	Logger "github.com/sociolens/sociolens/utils/log"
)

func init() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	Logger.Log.Info("api server initialized")
}

func main() {
	db, err := utils.GetDBConnectionWithBackoff(10)
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)

	// Default With the Logger and Recovery middleware already attached
	router := gin.Default()
	router.Use(cors.Default())

	server.NewServer(db).RegisterRoutes(router)

	address := os.Getenv("PORT")
	if address == "" {
		address = "8080"
	}

	Logger.Log.Info("api server starts up")
	router.Run(":" + address)
}
