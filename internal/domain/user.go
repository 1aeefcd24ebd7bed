package domain

import "time"

// User — минимальная учётная запись. Импортёр синтезирует по одному
// пользователю на каждый различный ИНН организации из истории закупок.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	INN          string
	CompanyName  string
	FullName     string
	PhoneNumber  string
	CreatedAt    time.Time
}

func NewUser(id, email, passwordHash, inn, companyName string) *User {
	return &User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		INN:          inn,
		CompanyName:  companyName,
	}
}
