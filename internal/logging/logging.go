package logging

import "log"

// Debug controls whether debug logs are printed.
var Debug bool

// Debugf logs a formatted debug message when Debug is enabled.
func Debugf(format string, v ...any) {
	if Debug {
		log.Printf("DEBUG: "+format, v...)
	}
}

func Infof(format string, v ...any) {
	log.Printf(format, v...)
}

// Warnf is used for client-caused failures.
func Warnf(format string, v ...any) {
	log.Printf("WARN: "+format, v...)
}

func Errorf(format string, v ...any) {
	log.Printf("ERROR: "+format, v...)
}
