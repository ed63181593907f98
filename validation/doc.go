// Package validation checks configuration structs and command input.
//
// Struct tag validation uses go-playground/validator. Field names in
// messages are the mapstructure keys, so errors read like the config
// file:
//
//	type Config struct {
//	    BaseURL string `mapstructure:"base_url" validate:"required,url"`
//	}
//	err := validation.Struct(cfg) // "engine.base_url: must be a valid URL"
//
// Programmatic checks collect errors before returning one AppError:
//
//	v := validation.New()
//	v.Required("instance_id", id)
//	err := v.Err()
package validation
