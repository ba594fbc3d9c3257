package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/sysocial/sysocial-backend/internal/apperror"
	"github.com/sysocial/sysocial-backend/internal/config"
	"github.com/sysocial/sysocial-backend/internal/database"
	"github.com/sysocial/sysocial-backend/internal/logger"
	"github.com/sysocial/sysocial-backend/internal/model"
	"github.com/sysocial/sysocial-backend/internal/repository"
	"github.com/sysocial/sysocial-backend/internal/service"
	"github.com/sysocial/sysocial-backend/internal/validator"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup("create-admin", cfg.LogLevel, cfg.LogFormat)
	validator.Setup()

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userService := service.NewUserService(repository.NewUserRepository(pool), cfg.BcryptCost)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Administrator ===")

	req := &model.CreateUserRequest{
		Username: prompt(reader, "Enter Username: "),
		Name:     prompt(reader, "Enter Name: "),
		Email:    prompt(reader, "Enter Email: "),
		Phone:    prompt(reader, "Enter Phone (optional): "),
		Type:     model.UserTypeAdmin,
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		return
	}
	req.Password = string(bytePassword)

	if errs := validator.Validate(req); errs != nil {
		printFields(errs)
		return
	}

	// ─── Create ────────────────────────────────────────────────────────
	user, err := userService.Create(ctx, req)
	if err != nil {
		if apperror.IsConflict(err) {
			fmt.Printf("Error: %v\n", err)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create administrator")
	}

	fmt.Printf("\nSuccess! Administrator '%s' (%s) created with ID: %d\n", user.Username, user.Email, user.ID)
}

func prompt(r *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

func printFields(errs map[string]string) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Printf("Error: %s: %s\n", f, errs[f])
	}
}
