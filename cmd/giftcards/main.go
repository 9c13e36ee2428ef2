package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/spf13/viper"

	"github.com/titanbank/backend/internal/database"
)

// Gift cards have no creation mutation on the API; this tool is the
// out-of-band issuing path. Codes are printed to stdout and optionally
// rendered as QR PNGs for physical distribution.
func main() {
	count := flag.Int("count", 1, "number of gift cards to issue")
	currency := flag.String("currency", "USD", "card currency (USD, EUR or GBP)")
	amount := flag.Float64("amount", 50, "card amount")
	qrDir := flag.String("qr-dir", "", "directory for QR PNGs (omit to skip)")
	flag.Parse()

	if *count < 1 {
		log.Fatal("count must be at least 1")
	}
	if *amount <= 0 {
		log.Fatal("amount must be greater than zero")
	}
	switch *currency {
	case "USD", "EUR", "GBP":
	default:
		log.Fatalf("unsupported currency %q", *currency)
	}

	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Config file not found, using defaults: %v", err)
	}

	db := database.InitDatabase()
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	value := decimal.NewFromFloat(*amount)
	for i := 0; i < *count; i++ {
		code := generateCode()
		if _, err := db.Exec(
			"INSERT INTO gift_cards (id, code, currency, amount) VALUES ($1, $2, $3, $4)",
			uuid.NewString(), code, *currency, value); err != nil {
			log.Fatalf("Failed to insert gift card: %v", err)
		}

		if *qrDir != "" {
			path := filepath.Join(*qrDir, code+".png")
			if err := qrcode.WriteFile(code, qrcode.Medium, 256, path); err != nil {
				log.Fatalf("Failed to write QR for %s: %v", code, err)
			}
		}

		fmt.Println(code)
	}

	log.Printf("Issued %d gift card(s) of %s %s", *count, value, *currency)
}

// generateCode returns a code like GC-7K2M9QX4TJ3B.
func generateCode() string {
	const alphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	b := make([]byte, 12)
	rand.Read(b)
	for i := range b {
		b[i] = alphabet[int(b[i])%len(alphabet)]
	}
	return "GC-" + string(b)
}
