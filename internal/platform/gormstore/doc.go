// Package gormstore implements the store interfaces with GORM on SQLite.
//
// It backs `database.driver: sqlite` for local development and gives the
// service and API tests a real relational store without a Postgres server.
// The schema is created with AutoMigrate; task associations are many-to-many
// relations on the task_responsibles and task_auditors join tables.
package gormstore
