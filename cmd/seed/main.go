package main

import (
	"context"
	"log"

	"golang.org/x/crypto/bcrypt"

	"scholarchat/internal/config"
	"scholarchat/internal/db"
	"scholarchat/internal/model"
	"scholarchat/internal/repository"
)

// demoPassword is the shared credential for seeded development accounts.
const demoPassword = "password123"

var demoStudents = []model.Student{
	{
		Name:             "Aarav Sharma",
		Gender:           "Male",
		DOB:              "2004-06-12",
		TotalIncome:      "250000",
		Caste:            "General",
		FatherOccupation: "Farmer",
		MotherOccupation: "Homemaker",
		Email:            "aarav@example.com",
	},
	{
		Name:             "Priya Patel",
		Gender:           "Female",
		DOB:              "2005-01-30",
		TotalIncome:      "180000",
		Caste:            "OBC",
		FatherOccupation: "Shopkeeper",
		MotherOccupation: "Teacher",
		Email:            "priya@example.com",
	},
	{
		Name:             "Rahul Verma",
		Gender:           "Male",
		DOB:              "2003-11-02",
		TotalIncome:      "320000",
		Caste:            "SC",
		FatherOccupation: "Driver",
		MotherOccupation: "Tailor",
		Email:            "rahul@example.com",
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.Student{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	hashed, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	studentRepo := repository.NewStudentRepository(gormDB)
	ctx := context.Background()

	created, skipped := 0, 0
	for _, student := range demoStudents {
		exists, err := studentRepo.ExistsByEmail(ctx, student.Email)
		if err != nil {
			log.Fatalf("Failed to check %s: %v", student.Email, err)
		}
		if exists {
			skipped++
			continue
		}
		student.PasswordHash = string(hashed)
		if err := studentRepo.Create(ctx, &student); err != nil {
			log.Fatalf("Failed to create %s: %v", student.Email, err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New students created: %d", created)
	log.Printf("  - Existing students skipped: %d", skipped)
	log.Printf("  - Demo password: %s", demoPassword)
}
