package main

import (
	"github.com/GoAdminGroup/go-admin/context"
	"github.com/GoAdminGroup/go-admin/modules/config"
	"github.com/GoAdminGroup/go-admin/modules/db"
	"github.com/GoAdminGroup/go-admin/plugins/admin/modules/table"
	"github.com/GoAdminGroup/go-admin/template/types/form"
)

// GetUsersTable описывает таблицу users для панели.
// Хэш пароля в списке не показываем.
func GetUsersTable(ctx *context.Context) table.Table {
	usersTable := table.NewDefaultTable(ctx, table.Config{
		Driver:     config.DriverPostgresql,
		Connection: table.DefaultConnectionName,
		CanAdd:     false,
		Editable:   false,
		Deletable:  true,
		Exportable: true,
		PrimaryKey: table.PrimaryKey{Type: db.Int, Name: "id"},
	})

	info := usersTable.GetInfo()
	info.AddField("ID", "id", db.Int).FieldSortable()
	info.AddField("Email", "email", db.Text).FieldFilterable()
	info.SetTable("users").SetTitle("Users").SetDescription("Registered users")

	formList := usersTable.GetForm()
	formList.AddField("ID", "id", db.Int, form.Default).FieldNotAllowAdd()
	formList.AddField("Email", "email", db.Text, form.Text)
	formList.SetTable("users").SetTitle("Users").SetDescription("Registered users")

	return usersTable
}

// GetUserProgressTable описывает таблицу user_progress.
// Ключ таблицы составной (user_id, level_id), поэтому редактирование
// через панель выключено - только просмотр и экспорт.
func GetUserProgressTable(ctx *context.Context) table.Table {
	progressTable := table.NewDefaultTable(ctx, table.Config{
		Driver:     config.DriverPostgresql,
		Connection: table.DefaultConnectionName,
		CanAdd:     false,
		Editable:   false,
		Deletable:  false,
		Exportable: true,
		PrimaryKey: table.PrimaryKey{Type: db.Int, Name: "user_id"},
	})

	info := progressTable.GetInfo()
	info.AddField("User ID", "user_id", db.Int).FieldFilterable()
	info.AddField("Level ID", "level_id", db.Int).FieldFilterable()
	info.AddField("Completed", "completed", db.Bool)
	info.AddField("Points", "points", db.Int).FieldSortable()
	info.SetTable("user_progress").SetTitle("User Progress").SetDescription("Per-level completion and points")

	formList := progressTable.GetForm()
	formList.AddField("User ID", "user_id", db.Int, form.Default)
	formList.AddField("Level ID", "level_id", db.Int, form.Default)
	formList.AddField("Completed", "completed", db.Bool, form.Switch)
	formList.AddField("Points", "points", db.Int, form.Number)
	formList.SetTable("user_progress").SetTitle("User Progress").SetDescription("Per-level completion and points")

	return progressTable
}
