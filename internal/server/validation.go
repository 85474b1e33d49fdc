package server

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"pickleball/internal/games"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

func registerValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = engine.RegisterValidation("skill_level", func(fl validator.FieldLevel) bool {
			_, err := games.ParseSkillLevel(fl.Field().String())
			return err == nil
		})
		_ = engine.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(games.TimeLayout, strings.TrimSpace(fl.Field().String()))
			return err == nil
		})
		_ = engine.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
}

var createGameMessages = bindMessages{
	"location":    {"required": "location is required", "notblank": "location is required"},
	"date":        {"required": "date is required"},
	"start_time":  {"required": "start_time is required", "clock": "start_time must match HH:MM (24-hour)"},
	"end_time":    {"required": "end_time is required", "clock": "end_time must match HH:MM (24-hour)"},
	"skill_level": {"skill_level": "skill_level must be one of beginner, intermediate, advanced, pro"},
}

var updateGameMessages = bindMessages{
	"start_time":  {"clock": "start_time must match HH:MM (24-hour)"},
	"end_time":    {"clock": "end_time must match HH:MM (24-hour)"},
	"skill_level": {"skill_level": "skill_level must be one of beginner, intermediate, advanced, pro"},
}

var registerMessages = bindMessages{
	"name":        {"required": "name is required", "notblank": "name is required"},
	"email":       {"required": "email is required", "email": "email is invalid"},
	"password":    {"required": "password is required", "min": "password must be at least 6 characters"},
	"skill_level": {"skill_level": "skill_level must be one of beginner, intermediate, advanced, pro"},
}

var loginMessages = bindMessages{
	"email":    {"required": "email is required"},
	"password": {"required": "password is required"},
}

var refreshMessages = bindMessages{
	"refresh_token": {"required": "refresh_token is required"},
}

var decideMessages = bindMessages{
	"status": {"required": "status is required"},
}

var updateUserMessages = bindMessages{
	"name":        {"notblank": "name is required"},
	"skill_level": {"skill_level": "skill_level must be one of beginner, intermediate, advanced, pro"},
}
