// Command qsurvey-user adds a user to the survey database.
//
//	qsurvey-user -db-url qsurvey.sqlite -username alice -admin
//
// The password is read from the QSURVEY_PASSWORD environment variable.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/mbolis/survey-api/database"
	"github.com/mbolis/survey-api/log"
	"github.com/mbolis/survey-api/model"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	_ = godotenv.Load()

	dbUrl := flag.String("db-url", "qsurvey.sqlite", "path to SQLite3 DB file")
	username := flag.String("username", "", "name of the user to create")
	admin := flag.Bool("admin", false, "grant the admin role")
	flag.Parse()

	password := os.Getenv("QSURVEY_PASSWORD")
	if *username == "" || password == "" {
		log.Fatal("user.args: -username and QSURVEY_PASSWORD are required")
	}

	db, err := database.Open(*dbUrl)
	if err != nil {
		log.Fatal("user.db.open:", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("user.hash:", err)
	}

	user := &model.User{Username: *username, PasswordHash: hash, IsAdmin: *admin}
	err = database.InsertUser(context.Background(), db, user)
	if database.IsUniqueViolation(err) {
		log.Fatalf("user.insert: %q already exists", *username)
	}
	if err != nil {
		log.Fatal("user.insert:", err)
	}

	log.WithFields(log.Fields{"id": user.ID, "admin": user.IsAdmin}).Infof("user %q created", user.Username)
}
