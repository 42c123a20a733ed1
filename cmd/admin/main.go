package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/GoAdminGroup/go-admin/adapter/gorilla"             // адаптер под наш роутер
	_ "github.com/GoAdminGroup/go-admin/modules/db/drivers/postgres" // драйвер БД для панели
	_ "github.com/GoAdminGroup/themes/adminlte"                      // тема оформления

	"github.com/GoAdminGroup/go-admin/engine"
	"github.com/GoAdminGroup/go-admin/modules/config"
	"github.com/GoAdminGroup/go-admin/modules/language"
	"github.com/GoAdminGroup/go-admin/plugins/admin/modules/table"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Админка для операторов: смотреть пользователей и их прогресс,
// не залезая в psql. Отдельный бинарник, наружу не выставляется.
func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, reading configuration from environment")
	}

	app := mux.NewRouter()
	eng := engine.Default()

	cfg := config.Config{
		Databases: config.DatabaseList{
			"default": {
				Host:         envOr("ADMIN_DB_HOST", "127.0.0.1"),
				Port:         envOr("ADMIN_DB_PORT", "5432"),
				User:         envOr("ADMIN_DB_USER", "postgres"),
				Pwd:          os.Getenv("ADMIN_DB_PASSWORD"),
				Name:         envOr("ADMIN_DB_NAME", "finn_sprint"),
				MaxIdleConns: 10,
				MaxOpenConns: 50,
				Driver:       config.DriverPostgresql,
			},
		},
		UrlPrefix: "admin",
		Store: config.Store{
			Path:   "./uploads",
			Prefix: "uploads",
		},
		Language: language.EN,
		Theme:    "adminlte",
	}

	// Панели требуются служебные таблицы goadmin_* - они создаются
	// скриптом admin.sql из дистрибутива go-admin.
	if err := eng.AddConfig(&cfg).
		AddGenerators(map[string]table.Generator{
			"users":         GetUsersTable,
			"user_progress": GetUserProgressTable,
		}).
		Use(app); err != nil {
		log.Fatalf("GoAdmin init error: %v", err)
	}

	port := envOr("ADMIN_PORT", ":9033")
	if port[0] != ':' {
		port = ":" + port
	}
	log.Printf("Starting admin panel on port %s", port)
	if err := http.ListenAndServe(port, app); err != nil {
		log.Fatalf("Admin panel start error: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
