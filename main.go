package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"go-sitrep/analyzer"
	"go-sitrep/cronjobs"
	"go-sitrep/db"
	"go-sitrep/geocode"
	"go-sitrep/pipeline"
	"go-sitrep/routes"
	"go-sitrep/synthesis"
	"go-sitrep/translate"
)

func main() {
	// Load .env file
	err := godotenv.Load()
	if err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Print and check env
	if os.Getenv("OPENAI_API_KEY") != "" {
		fmt.Println("OPENAI_API_KEY loaded")
	}

	// Translation gateway: Lingo-style backend when configured, otherwise
	// the offline echo gateway.
	var gateway translate.Gateway
	if os.Getenv("LINGO_API_URL") != "" {
		fmt.Println("Using Lingo translation backend")
		gateway = translate.NewClient()
	} else {
		fmt.Println("LINGO_API_URL not set, using echo translation gateway")
		gateway = translate.Echo{}
	}

	geocoder := geocode.NewService()

	// SITREP store: Firestore when credentials are present, else flat files.
	var store db.Store
	if os.Getenv("FIREBASE_CREDENTIALS") != "" {
		firestoreClient, err := db.InitFirestore()
		if err != nil {
			log.Fatalf("Failed to initialize Firestore: %v", err)
		}
		defer db.CloseFirestore() // Firestore client is closed on exit
		store = db.NewFirestoreStore(firestoreClient)
		fmt.Println("Using Firestore sitrep store")
	} else {
		fileStore, err := db.NewFileStore(os.Getenv("SITREP_DIR"))
		if err != nil {
			log.Fatalf("Failed to initialize file store: %v", err)
		}
		store = fileStore
		fmt.Println("Using file sitrep store")
	}

	pl := pipeline.New(gateway, geocoder)
	synth := synthesis.New(gateway)
	svc := analyzer.NewService()

	// Initialize cron jobs
	cronjobs.InitCronJobs(cronjobs.Deps{
		Pipeline:    pl,
		Synthesizer: synth,
		Store:       store,
	})

	r := routes.SetupRouter(pl, synth, svc, geocoder, store)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
