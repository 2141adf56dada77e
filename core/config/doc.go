// Package config provides configuration management for the OGRE server.
//
// It utilizes Viper for loading configuration from environment variables,
// a .env file, and struct-tag defaults.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, admin API key, body limit)
//   - Database: MySQL, PostgreSQL or SQLite connection details
//   - Storage: S3/MinIO credentials, bucket and download URL expiry
//   - Log: Logging level and format
//   - Library: ordered download format preference and user-count cache TTL
//   - Jobs: conversion worker pool settings
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
