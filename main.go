package main

import (
	"poultry-app/config"
	"poultry-app/controllers/idgen"
	"poultry-app/database"
	"poultry-app/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	config.LoadConfig()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	db, err := database.Connect()
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		logrus.Fatalf("failed to auto migrate: %v", err)
	}

	idgen.Init()
	idgen.AutoGenerateSnowflakeID(db)
	database.RunSeeders(db)

	locker := database.NewCellLocker()

	app := fiber.New()
	config.SetupCORS(app)

	routes.SetupAuthRoutes(app, db)
	routes.SetupStoreRoutes(app, db)
	routes.SetupInventoryRoutes(app, db, locker)
	routes.SetupProcessingRoutes(app, db, locker)
	routes.SetupSaleRoutes(app, db, locker)
	routes.SetupPurchaseRoutes(app, db, locker)
	routes.SetupSettlementRoutes(app, db, locker)
	routes.SetupVarianceRoutes(app, db, locker)

	logrus.WithField("port", config.APP_PORT).Info("server starting")
	if err := app.Listen(":" + config.APP_PORT); err != nil {
		logrus.Fatal(err)
	}
}
