package db

import (
	"encoding/csv"
	"errors"
	"os"
	"strings"

	"gorm.io/gorm"
)

// UserRecord is one row of a seed CSV: name,email,password,skill_level.
type UserRecord struct {
	Name       string
	Email      string
	Password   string
	SkillLevel string
}

// LoadUsers reads users from a CSV and inserts the ones whose email is not
// taken yet. hash turns the plaintext password into the stored hash.
func LoadUsers(conn *gorm.DB, path string, hash func(string) (string, error)) (int, error) {
	if conn == nil {
		return 0, errors.New("db connection is nil")
	}
	records, err := ReadUserRecords(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		var existing User
		err := conn.Where("email = ?", record.Email).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return inserted, err
		}
		hashed, err := hash(record.Password)
		if err != nil {
			return inserted, err
		}
		user := User{
			Name:         record.Name,
			Email:        record.Email,
			PasswordHash: hashed,
			SkillLevel:   record.SkillLevel,
		}
		if err := conn.Create(&user).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// ReadUserRecords parses the seed CSV. The first row is a header; rows
// without an email or password are skipped and a missing skill level
// defaults to intermediate.
func ReadUserRecords(path string) ([]UserRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	var records []UserRecord
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		record := UserRecord{
			Name:       strings.TrimSpace(row[0]),
			Email:      strings.ToLower(strings.TrimSpace(row[1])),
			Password:   row[2],
			SkillLevel: "intermediate",
		}
		if len(row) >= 4 && strings.TrimSpace(row[3]) != "" {
			record.SkillLevel = strings.ToLower(strings.TrimSpace(row[3]))
		}
		if record.Email == "" || record.Password == "" {
			continue
		}
		if record.Name == "" {
			record.Name = record.Email
		}
		records = append(records, record)
	}
	return records, nil
}
