package common

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func PrintHelp() {
	fmt.Println("InsightLink " + Version)
	fmt.Println("Usage: insightlink [--port <port>] [--log-dir <log dir>] [--version] [--help]")
	flag.PrintDefaults()
}

func SetupLog() {
	if *LogDir != "" {
		logPath := filepath.Join(*LogDir, "insightlink.log")
		fd, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal("failed to open log file:", err)
		}
		log.SetOutput(fd)
	}
}

func SysLog(s string) {
	log.Printf("[SYS] | %s \n", s)
}

func SysError(s string) {
	log.Printf("[SYS] | %s \n", s)
}

func FatalLog(v ...any) {
	log.Fatal(v...)
}

func Password2Hash(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hashedPassword), err
}

func ValidatePasswordAndHash(password string, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

const slugCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GetRandomString returns a random string drawn from a URL-safe charset,
// suitable for link slugs and card codes.
func GetRandomString(length int) string {
	key := make([]byte, length)
	charsetLen := big.NewInt(int64(len(slugCharset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsetLen)
		if err != nil {
			// crypto/rand failing means the platform is broken; give up loudly
			FatalLog("crypto/rand unavailable:", err)
		}
		key[i] = slugCharset[n.Int64()]
	}
	return string(key)
}

func GetUUID() string {
	return uuid.New().String()
}
