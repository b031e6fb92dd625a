package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger: human readable in development, JSON otherwise
func New(environment string) (*zap.SugaredLogger, error) {
	var (
		log *zap.Logger
		err error
	)
	if environment == "development" {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return log.Sugar(), nil
}

// Nop returns a logger that discards everything, for tests and tooling
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
