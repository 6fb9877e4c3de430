package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/amverse/amverse/internal/stores/account"
	chat_store "github.com/amverse/amverse/internal/stores/chat"
	"github.com/amverse/amverse/pkg/conversation"
	"github.com/amverse/amverse/pkg/rag"
	"github.com/amverse/amverse/pkg/utils"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/term"
)

func main() {
	// Find env file
	envFile := ".env"
	if os.Getenv("ENV_FILE") != "" {
		envFile = os.Getenv("ENV_FILE")
	}

	// Load global config
	cfg := utils.NewConfigFromEnv(envFile)

	// Create MySQL config
	dbConfig := mysql.Config{
		User:      cfg.Get("MYSQL_USERNAME"),
		Passwd:    cfg.Get("MYSQL_ROOT_PASSWORD"),
		Net:       "tcp",
		Addr:      fmt.Sprintf("%s:%s", cfg.Get("MYSQL_HOST"), cfg.Get("MYSQL_PORT")),
		DBName:    cfg.Get("MYSQL_DATABASE"),
		ParseTime: true,
	}

	// Initialize database connections to create stores
	accountStore, err := account.NewMySqlStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[COMMANDLINE]: Failed to initialize account store: %v", err)
	}

	chatStore, err := chat_store.NewMySqlStore(dbConfig.FormatDSN())
	if err != nil {
		log.Fatalf("[COMMANDLINE]: Failed to initialize chat store: %v", err)
	}

	// Create the backend client
	timeout := time.Duration(cfg.GetIntWithDefault("RAG_TIMEOUT_SECONDS", 120)) * time.Second
	client := rag.NewClientWithTimeout(cfg.GetWithDefault("RAG_BASE_URL", "http://127.0.0.1:5000"), timeout)

	ctx := context.Background()

	// Sign in before anything else
	acct, err := login(ctx, accountStore)
	if err != nil {
		log.Fatalf("[COMMANDLINE]: Failed to sign in: %v", err)
	}

	controller := conversation.NewController(client, chatStore, conversation.Config{
		OwnerID:      acct.ID,
		CustomerName: acct.FullName,
	})
	if err := controller.LoadHistory(ctx); err != nil {
		log.Fatalf("[COMMANDLINE]: Failed to load chat history: %v", err)
	}

	if err := startInteractiveSession(ctx, controller); err != nil {
		log.Fatalf("Failed to start interactive session: %v", err)
	}
}

// login prompts for credentials until authentication succeeds
func login(ctx context.Context, store account.Store) (*account.Account, error) {
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("Email: ")
		if !scanner.Scan() {
			return nil, fmt.Errorf("no input")
		}
		email := strings.TrimSpace(scanner.Text())

		fmt.Print("Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return nil, err
		}

		acct, err := store.Authenticate(ctx, email, string(password))
		if err != nil {
			fmt.Printf("Sign in failed: %v\n", err)
			continue
		}
		return acct, nil
	}
}

// startInteractiveSession initializes the command line chat interface
func startInteractiveSession(ctx context.Context, controller *conversation.Controller) error {
	fmt.Println("AmVerse started. Type '/help' for commands, '/quit' to exit.")

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("\n> ")

		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := runCommand(ctx, controller, input); quit {
				break
			}
			continue
		}

		if err := controller.SubmitMessage(ctx, input); err != nil {
			fmt.Printf("Warning: failed to save chat: %v\n", err)
		}

		printLastReply(controller)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	return nil
}

// runCommand dispatches a slash command. It returns true when the user
// asked to quit.
func runCommand(ctx context.Context, controller *conversation.Controller, input string) bool {
	fields := strings.Fields(input)

	switch fields[0] {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /new       start a new chat")
		fmt.Println("  /chats     list saved chats")
		fmt.Println("  /open N    open saved chat N")
		fmt.Println("  /delete N  delete saved chat N")
		fmt.Println("  /cancel    cancel the pending query")
		fmt.Println("  /export    print the transcript")
		fmt.Println("  /quit      exit")

	case "/new":
		controller.StartNewChat()
		fmt.Println("Started a new chat.")

	case "/chats":
		chats := controller.Chats()
		if len(chats) == 0 {
			fmt.Println("No saved chats.")
			break
		}
		for i, chat := range chats {
			fmt.Printf("%d. %s (%s)\n", i+1, chat.Title, chat.UpdatedAt.Format("2006-01-02 15:04"))
		}

	case "/open":
		chat, ok := chatAt(controller, fields)
		if !ok {
			break
		}
		controller.SelectChat(chat)
		for _, msg := range controller.Transcript() {
			fmt.Printf("%s: %s\n", msg.DisplayName, msg.Text)
		}

	case "/delete":
		chat, ok := chatAt(controller, fields)
		if !ok {
			break
		}
		if err := controller.DeleteChat(ctx, chat.ID); err != nil {
			fmt.Printf("Failed to delete chat: %v\n", err)
			break
		}
		fmt.Println("Chat deleted.")

	case "/cancel":
		controller.CancelPending()
		fmt.Println("Pending query cancelled.")

	case "/export":
		for _, msg := range controller.Transcript() {
			fmt.Printf("%s: %s\n\n", msg.DisplayName, msg.Text)
		}

	default:
		fmt.Printf("Unknown command: %s\n", fields[0])
	}

	return false
}

// chatAt resolves a 1-based chat index from a command's arguments
func chatAt(controller *conversation.Controller, fields []string) (conversation.ChatRecord, bool) {
	if len(fields) < 2 {
		fmt.Printf("Usage: %s N\n", fields[0])
		return conversation.ChatRecord{}, false
	}

	n, err := strconv.Atoi(fields[1])
	chats := controller.Chats()
	if err != nil || n < 1 || n > len(chats) {
		fmt.Println("No such chat.")
		return conversation.ChatRecord{}, false
	}

	return chats[n-1], true
}

// printLastReply prints the assistant's latest message, if any
func printLastReply(controller *conversation.Controller) {
	transcript := controller.Transcript()
	if len(transcript) == 0 {
		return
	}

	last := transcript[len(transcript)-1]
	if last.Sender != conversation.SenderAssistant {
		return
	}

	fmt.Printf("%s: %s\n", last.DisplayName, last.Text)
	if len(last.Sources) > 0 {
		fmt.Println("Sources:")
		for _, src := range last.Sources {
			fmt.Printf("  - %s\n", src.ScreenshotURL())
		}
	}
}
