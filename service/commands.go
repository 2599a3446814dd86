package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"yatube/app/config"
	"yatube/app/repositories"
)

var osExit = os.Exit

// HandleCommand handles subcommands and returns an exit code.
func HandleCommand(args []string) int {
	if len(args) < 1 {
		printHelp()
		osExit(1)
		return 1
	}

	cmd := args[0]
	if cmd == "help" {
		printHelp()
		return 0
	}
	if cmd == "restore" && len(args) < 2 {
		fmt.Println("Error: backup file path required for restore")
		osExit(1)
		return 1
	}
	switch cmd {
	case "serve", "clean", "init", "backup", "restore", "group", "user":
	default:
		fmt.Printf("Unknown command: %s\n\n", cmd)
		printHelp()
		osExit(1)
		return 1
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		osExit(1)
		return 1
	}
	dbPath := cfg.Database.Path

	switch cmd {
	case "serve":
		if err := RunAppServer(cfg, args[1:]); err != nil {
			fmt.Printf("Server error: %v\n", err)
			osExit(1)
			return 1
		}
		return 0
	case "clean":
		return clean(dbPath)
	case "init":
		return initDb(dbPath)
	case "backup":
		return backup(dbPath)
	case "restore":
		return restore(dbPath, args[1])
	case "group":
		return groupCommand(cfg, args[1:])
	default:
		return userCommand(cfg, args[1:])
	}
}

// printHelp prints help for the subcommands.
func printHelp() {
	helpText := `Usage: yatube <command> [options]

Commands:
  serve [--addr <host:port>]                 Run the blog service
  clean                                      Remove the database
  init                                       Initialize a new empty database
  backup                                     Create a backup of the database
  restore <file>                             Restore database from backup
  group create <slug> <title> [description]  Create a group
  group list                                 List groups
  group delete <slug>                        Delete a group, keeping its posts
  user delete <username>                     Delete a user with their posts, comments and follows
  version                                    Show version information
  help                                       Display this help message

The configuration file is read from $YATUBE_CONFIG (default config.yaml).
`
	fmt.Println(helpText)
}

// clean removes the database.
func clean(dbPath string) int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}

	fmt.Print("Are you sure you want to clean the database? This cannot be undone. [y/N] ")
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Println("Operation cancelled")
		return 1
	}

	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

// initDb initializes a new empty database.
func initDb(dbPath string) int {
	if _, err := os.Stat(dbPath); err == nil {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(dbPath)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	defer repo.Close()

	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full badger backup next to the database.
func backup(dbPath string) int {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No database exists to backup")
		return 1
	}

	dir := backupDir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := repo.DB().Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Printf("Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore loads a backup into a fresh database, replacing any existing one.
func restore(dbPath, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if os.IsNotExist(err) {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to stat backup file: %v\n", err)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if _, err := os.Stat(dbPath); err == nil {
		fmt.Print("Existing database found. Do you want to replace it? [y/N] ")
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	if err := os.MkdirAll(dbPath, 0755); err != nil {
		fmt.Printf("Failed to create database directory: %v\n", err)
		return 1
	}

	repo, err := repositories.NewRepository(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer repo.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	err = func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic occurred during restore: %v", r)
			}
		}()
		return repo.DB().Load(f, 4)
	}()
	if err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Println("Database restored successfully")
	return 0
}

// groupCommand manages groups, which have no web form of their own.
func groupCommand(cfg *config.Config, args []string) int {
	if len(args) < 1 {
		fmt.Println("Error: group subcommand required (create, list, delete)")
		return 1
	}

	app, err := openServices(cfg, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer app.Close()
	groups := app.services.Groups

	switch args[0] {
	case "create":
		if len(args) < 3 {
			fmt.Println("Error: usage: group create <slug> <title> [description]")
			return 1
		}
		description := strings.Join(args[3:], " ")
		group, err := groups.Create(args[1], args[2], description)
		if err != nil {
			fmt.Printf("Failed to create group: %v\n", err)
			return 1
		}
		fmt.Printf("Group %q created with slug %s\n", group.Title, group.Slug)
		return 0
	case "list":
		list, err := groups.List()
		if err != nil {
			fmt.Printf("Failed to list groups: %v\n", err)
			return 1
		}
		if len(list) == 0 {
			fmt.Println("No groups")
			return 0
		}
		for _, group := range list {
			fmt.Printf("%-20s %s\n", group.Slug, group.Title)
		}
		return 0
	case "delete":
		if len(args) < 2 {
			fmt.Println("Error: usage: group delete <slug>")
			return 1
		}
		if err := groups.Delete(args[1]); err != nil {
			fmt.Printf("Failed to delete group: %v\n", err)
			return 1
		}
		fmt.Printf("Group %s deleted\n", args[1])
		return 0
	default:
		fmt.Printf("Unknown group command: %s\n", args[0])
		return 1
	}
}

func userCommand(cfg *config.Config, args []string) int {
	if len(args) < 2 || args[0] != "delete" {
		fmt.Println("Error: usage: user delete <username>")
		return 1
	}

	app, err := openServices(cfg, nil)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer app.Close()

	if err := app.services.Users.DeleteUser(args[1]); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			fmt.Printf("User %s does not exist\n", args[1])
			return 1
		}
		fmt.Printf("Failed to delete user: %v\n", err)
		return 1
	}
	fmt.Printf("User %s deleted\n", args[1])
	return 0
}
