// Package config handles loading and validating Voxhaus Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Deployment-tunable constants for the command resolution layer live here:
// resolver score thresholds, the registry refresh interval, the discovery
// probe budget, and dispatch timeout/retry settings are configuration rather
// than code, so a site can tune them without a rebuild.
//
// Security Considerations:
//   - Sensitive values (backend tokens, broker passwords) should be set via
//     environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Backend.Kind)
package config
