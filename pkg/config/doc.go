// Package config provides configuration management for budgetd.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("budgetd.yaml")
//
//  2. From a YAML file with a .env file and environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("budgetd.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention BUDGETD_SECTION_FIELD.
// For example:
//
//   - BUDGETD_SERVER_HTTP_LISTEN_ADDRESS overrides server.http.listen_address
//   - BUDGETD_BUDGET_MAINTENANCE_INTERVAL overrides budget.maintenance_interval
//   - BUDGETD_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// A .env file next to the configuration file is loaded first. Variables that
// are already set in the process environment take precedence over it.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Budget Policies
//
// Policies are listed under budget.policies. When none are configured, the
// built-in symbolication policies are used. Policies are fixed for the
// lifetime of the process: the Watcher reports configuration changes but a
// restart is required to apply them.
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	// At application startup
//	if err := config.Initialize("budgetd.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Anywhere in the application
//	cfg := config.GetConfig()
//	fmt.Println(cfg.Server.HTTP.ListenAddress)
//
// For testing, prefer dependency injection with explicit Config instances.
package config
