// Seed an admin account:
//
//	go run scripts/create_admin.go -email admin@univ.dz -name "Admin" -password secret
package main

import (
	"flag"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/Sidali-Djeghbal/hodory-attendance-system/config"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/database"
	"github.com/Sidali-Djeghbal/hodory-attendance-system/models"
)

func main() {
	email := flag.String("email", "", "admin email")
	name := flag.String("name", "Administrator", "full name")
	password := flag.String("password", "", "password")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("email and password are required")
	}

	cfg := config.Load()
	database.Connect(cfg)

	var existing models.User
	if err := database.DB.Where("email = ?", *email).First(&existing).Error; err == nil {
		log.Fatalf("user %s already exists (id=%d)", *email, existing.ID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	u := models.User{
		Email:    *email,
		FullName: *name,
		Password: string(hash),
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := database.DB.Create(&u).Error; err != nil {
		log.Fatal(err)
	}
	log.Printf("admin created: id=%d email=%s", u.ID, u.Email)
}
