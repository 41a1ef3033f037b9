package main

import (
	"log"
	"net/http"

	"signoff/account"
	"signoff/audit"
	"signoff/bizerror"
	"signoff/contentstore"
	"signoff/contracts"
	"signoff/gate"
	"signoff/infra/tracing"
	"signoff/persistence"
	"signoff/review"
	"signoff/servehttp"
	"signoff/session"
	"signoff/sessions"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("service start")

	dbConfig, err := persistence.ParseDatabaseConfigFromEnv()
	if err != nil {
		log.Fatalf("parse database config failed %v\n", err)
	}

	// create database (no conflict)
	if dbConfig.DriverType == "mysql" {
		if err := persistence.PrepareMysqlDatabase(dbConfig.DriverArgs); err != nil {
			log.Fatalf("failed to prepare database %v\n", err)
		}
	}

	// connect database
	ds := &persistence.DataSourceManager{DatabaseConfig: dbConfig}
	if err := ds.Start(); err != nil {
		log.Fatalf("database connection failed %v\n", err)
	}
	defer ds.Stop()
	persistence.ActiveDataSourceManager = ds

	// database migration (race condition)
	err = ds.GormDB(nil).AutoMigrate(
		&account.User{},
		&audit.Entry{},
		&review.ContentSubmission{},
		&contracts.Contract{}, &contracts.ContractClause{}, &contracts.ContractSignature{},
		&contentstore.Article{}, &contentstore.Post{}, &contentstore.Blog{},
		&contentstore.Course{}, &contentstore.Case{}, &contentstore.File{}, &contentstore.Image{},
	).Error
	if err != nil {
		log.Fatalf("database migration failed %v\n", err)
	}

	if err := account.DefaultSecurityConfiguration(); err != nil {
		log.Fatalf("default security configuration failed %v\n", err)
	}

	// the gate reads the actor's current role from the identity store
	gate.LoadRoleFunc = account.LoadUserRole

	tracingCloser, err := tracing.StartTracing()
	if err != nil {
		log.Fatalf("tracing start failed %v\n", err)
	}
	defer tracingCloser.Close()

	engine := gin.Default()
	engine.Use(tracing.TracingIngress(), bizerror.ErrorHandling())
	engine.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "signoff")
	})

	sessions.RegisterSessionsHandler(engine)
	sessions.RegisterSessionUsersHandler(engine, session.SimpleAuthFilter())
	account.RegisterUsersHandler(engine, session.SimpleAuthFilter())
	review.RegisterContentSubmissionsRestAPI(engine, session.SimpleAuthFilter())
	contracts.RegisterContractsRestAPI(engine, session.SimpleAuthFilter())

	servehttp.StartHTTPServer(engine)
}
