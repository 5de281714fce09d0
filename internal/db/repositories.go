package db

import "gorm.io/gorm"

type Repositories struct {
	SymptomLogs *SymptomLogRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		SymptomLogs: NewSymptomLogRepository(database),
	}
}
