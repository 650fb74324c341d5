package main

import (
	"certhub/config"
	"certhub/database"
	"certhub/models"
	programModels "certhub/models/program"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Roster CSV rows are one of:
//
//	kind=user        id,name,email,role
//	kind=program     id,variant,title,organizerId,startDate,endDate
//	kind=enrollment  programId,userId
//
// The header names every column used by any kind; unused cells are left empty.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	path := "roster.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) < 2 {
		log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}
	log.Printf("Total rows to import: %d", len(records)-1)

	db := database.Database.Db
	counts := map[string]int{}
	skipped := 0

	for i, row := range records[1:] {
		kind := strings.ToLower(getField(row, headerIndex, "kind"))
		if err := importRow(db, kind, row, headerIndex); err != nil {
			log.Printf("Row %d (%s) skipped: %v", i+2, kind, err)
			skipped++
			continue
		}
		counts[kind]++
	}

	log.Printf("=== Import Complete ===")
	log.Printf("Users: %d", counts["user"])
	log.Printf("Programs: %d", counts["program"])
	log.Printf("Enrollments: %d", counts["enrollment"])
	log.Printf("Skipped: %d", skipped)
}

func importRow(db *gorm.DB, kind string, row []string, headerIndex map[string]int) error {
	switch kind {
	case "user":
		user := models.User{
			ID:    getField(row, headerIndex, "id"),
			Name:  getField(row, headerIndex, "name"),
			Email: strings.ToLower(getField(row, headerIndex, "email")),
			Role:  strings.ToUpper(getField(row, headerIndex, "role")),
		}
		if user.ID == "" || user.Email == "" {
			return fmt.Errorf("id and email are required")
		}
		if user.Role == "" {
			user.Role = models.RoleUser
		}
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "email", "role", "updated_at"}),
		}).Create(&user).Error

	case "program":
		start, err := parseDate(getField(row, headerIndex, "startDate"))
		if err != nil {
			return fmt.Errorf("startDate: %w", err)
		}
		program := programModels.Program{
			ID:          getField(row, headerIndex, "id"),
			Variant:     strings.ToLower(getField(row, headerIndex, "variant")),
			Title:       getField(row, headerIndex, "title"),
			OrganizerID: getField(row, headerIndex, "organizerId"),
			StartDate:   start,
		}
		if program.ID == "" || program.OrganizerID == "" {
			return fmt.Errorf("id and organizerId are required")
		}
		if program.Variant != programModels.VariantHackathon && program.Variant != programModels.VariantInternship {
			return fmt.Errorf("unknown variant %q", program.Variant)
		}
		if end := getField(row, headerIndex, "endDate"); end != "" {
			t, err := parseDate(end)
			if err != nil {
				return fmt.Errorf("endDate: %w", err)
			}
			program.EndDate = &t
		}
		program.Status = program.StatusAt(time.Now())
		return db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"variant", "title", "organizer_id", "start_date", "end_date", "status", "updated_at"}),
		}).Create(&program).Error

	case "enrollment":
		enrollment := programModels.ProgramParticipant{
			ProgramID: getField(row, headerIndex, "programId"),
			UserID:    getField(row, headerIndex, "userId"),
			JoinedAt:  time.Now().UTC(),
		}
		if enrollment.ProgramID == "" || enrollment.UserID == "" {
			return fmt.Errorf("programId and userId are required")
		}
		return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&enrollment).Error

	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseDate accepts RFC 3339 timestamps or plain dates (UTC midnight).
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse("2006-01-02", s)
}
