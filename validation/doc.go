// Package validation runs go-playground/validator struct-tag checks and
// reports failures as a single INVALID_INPUT AppError.
//
// Field names in messages come from mapstructure tags, so a failure on
// redis.Config reads "port: must be at most 65535".
//
//	type Config struct {
//	    Port int `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(cfg)
package validation
