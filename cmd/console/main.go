package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"adminhub/internal/console"
	"adminhub/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

func main() {
	global := flag.NewFlagSet("adminhub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	yes := global.Bool("yes", false, "skip confirmation prompts")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	token := fileTokenSource(*tokenPath)
	api := console.NewAPI(*baseURL+"/api", token)

	app := &app{
		api:       api,
		baseURL:   *baseURL,
		token:     token,
		tokenPath: *tokenPath,
		confirm:   terminalConfirm,
	}
	if *yes {
		app.confirm = func(string) bool { return true }
	}

	switch cmd {
	case "auth":
		app.handleAuth(ctx, sub, args[2:])
	case "articles":
		app.handleArticles(ctx, sub, args[2:])
	case "clients":
		app.handleClients(ctx, sub, args[2:])
	case "users":
		app.handleUsers(ctx, sub, args[2:])
	case "export":
		app.handleExport(ctx, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

type app struct {
	api       *console.API
	baseURL   string
	token     console.TokenSource
	tokenPath string
	confirm   console.ConfirmFunc
}

func (a *app) handleAuth(ctx context.Context, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		username := fs.String("username", "", "admin username")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)

		if *username == "" || *password == "" {
			log.Fatal("username and password are required")
		}

		token, err := a.api.Login(ctx, *username, *password)
		if err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(a.tokenPath, token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "logout":
		if err := clearToken(a.tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: adminhub auth <login|logout>")
	}
}

func (a *app) handleArticles(ctx context.Context, sub string, args []string) {
	view := console.NewArticleView(a.api)
	view.Confirm = a.confirm

	switch sub {
	case "list":
		if err := view.Load(ctx); err != nil {
			log.Fatalf("load articles failed: %v", err)
		}
		printArticles(view.Items())
	case "watch":
		a.watch(ctx, func(sub *console.Subscriber) error {
			view.Store.OnChange(func(items []models.Article) {
				printArticles(items)
			})
			if err := view.Load(ctx); err != nil {
				return err
			}
			view.Subscribe(sub)
			return nil
		})
	case "create":
		fs := flag.NewFlagSet("articles create", flag.ExitOnError)
		title := fs.String("title", "", "article title")
		description := fs.String("description", "", "article description")
		link := fs.String("link", "", "optional external link")
		images := fs.String("images", "", "comma-separated image file paths")
		_ = fs.Parse(args)
		if *title == "" {
			log.Fatal("title is required")
		}

		in := console.ArticleInput{
			Title:       *title,
			Description: *description,
			Link:        *link,
			Images:      readUploads(*images),
		}
		article, err := view.Create(ctx, in)
		if err != nil {
			if errors.Is(err, console.ErrPendingEcho) {
				fmt.Println("article created")
				return
			}
			log.Fatalf("create failed: %v", err)
		}
		fmt.Printf("created article %d\n", article.ID)
	case "update":
		fs := flag.NewFlagSet("articles update", flag.ExitOnError)
		id := fs.Int("id", 0, "article id")
		title := fs.String("title", "", "article title")
		description := fs.String("description", "", "article description")
		link := fs.String("link", "", "optional external link")
		images := fs.String("images", "", "comma-separated image file paths (replaces stored set)")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}

		in := console.ArticleInput{
			Title:       *title,
			Description: *description,
			Link:        *link,
			Images:      readUploads(*images),
		}
		if err := view.Update(ctx, *id, in); err != nil {
			if errors.Is(err, console.ErrCancelled) {
				fmt.Println("cancelled")
				return
			}
			log.Fatalf("update failed: %v", err)
		}
		fmt.Println("article updated")
	case "delete":
		fs := flag.NewFlagSet("articles delete", flag.ExitOnError)
		id := fs.Int("id", 0, "article id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}

		if err := view.Delete(ctx, *id); err != nil {
			if errors.Is(err, console.ErrCancelled) {
				fmt.Println("cancelled")
				return
			}
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("article deleted")
	default:
		log.Fatal("usage: adminhub articles <list|watch|create|update|delete>")
	}
}

func (a *app) handleClients(ctx context.Context, sub string, args []string) {
	view := console.NewClientView(a.api)
	view.Confirm = a.confirm

	switch sub {
	case "list":
		if err := view.Load(ctx); err != nil {
			log.Fatalf("load clients failed: %v", err)
		}
		printClients(view.Items())
	case "watch":
		a.watch(ctx, func(sub *console.Subscriber) error {
			view.Store.OnChange(func(items []models.Client) {
				printClients(items)
			})
			if err := view.Load(ctx); err != nil {
				return err
			}
			view.Subscribe(sub)
			return nil
		})
	case "create", "update":
		fs := flag.NewFlagSet("clients "+sub, flag.ExitOnError)
		id := fs.Int("id", 0, "client id (update only)")
		first := fs.String("first", "", "first name")
		last := fs.String("last", "", "last name")
		email := fs.String("email", "", "email address")
		phone := fs.String("phone", "", "phone number")
		gender := fs.String("gender", "", "gender")
		dob := fs.String("dob", "", "date of birth (YYYY-MM-DD)")
		address := fs.String("address", "", "address")
		city := fs.String("city", "", "city")
		_ = fs.Parse(args)

		in := console.ClientInput{
			FirstName:   *first,
			LastName:    *last,
			Email:       *email,
			PhoneNumber: *phone,
			Gender:      *gender,
			DateOfBirth: *dob,
			Address:     *address,
			City:        *city,
		}

		if sub == "create" {
			client, err := view.Create(ctx, in)
			if err != nil {
				if errors.Is(err, console.ErrPendingEcho) {
					fmt.Println("client created")
					return
				}
				log.Fatalf("create failed: %v", err)
			}
			fmt.Printf("created client %d\n", client.ClientID)
			return
		}

		if *id <= 0 {
			log.Fatal("id is required")
		}
		if err := view.Update(ctx, *id, in); err != nil {
			if errors.Is(err, console.ErrCancelled) {
				fmt.Println("cancelled")
				return
			}
			log.Fatalf("update failed: %v", err)
		}
		fmt.Println("client updated")
	case "delete":
		fs := flag.NewFlagSet("clients delete", flag.ExitOnError)
		id := fs.Int("id", 0, "client id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}

		if err := view.Delete(ctx, *id); err != nil {
			if errors.Is(err, console.ErrCancelled) {
				fmt.Println("cancelled")
				return
			}
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("client deleted")
	default:
		log.Fatal("usage: adminhub clients <list|watch|create|update|delete>")
	}
}

func (a *app) handleUsers(ctx context.Context, sub string, args []string) {
	switch sub {
	case "list":
		out, err := a.api.FetchAdmins(ctx)
		if err != nil {
			log.Fatalf("load users failed: %v", err)
		}
		for _, admin := range out {
			fmt.Printf("%4d  @%-20s %-30s %s\n", admin.ID, admin.Username, admin.FullName, admin.Email)
		}
	case "add":
		fs := flag.NewFlagSet("users add", flag.ExitOnError)
		username := fs.String("username", "", "username")
		password := fs.String("password", "", "password")
		fullName := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		phone := fs.String("phone", "", "phone number")
		_ = fs.Parse(args)
		if *username == "" || *password == "" || *email == "" {
			log.Fatal("username, password, and email are required")
		}

		err := a.api.CreateAdmin(ctx, console.AdminInput{
			Username:    *username,
			Password:    *password,
			FullName:    *fullName,
			Email:       *email,
			PhoneNumber: *phone,
		})
		if err != nil {
			log.Fatalf("add user failed: %v", err)
		}
		fmt.Println("user created")
	case "delete":
		fs := flag.NewFlagSet("users delete", flag.ExitOnError)
		id := fs.Int("id", 0, "user id")
		_ = fs.Parse(args)
		if *id <= 0 {
			log.Fatal("id is required")
		}
		if !a.confirm("Are you sure you want to delete this admin?") {
			fmt.Println("cancelled")
			return
		}

		if err := a.api.DeleteAdmin(ctx, *id); err != nil {
			log.Fatalf("delete user failed: %v", err)
		}
		fmt.Println("user deleted")
	default:
		log.Fatal("usage: adminhub users <list|add|delete>")
	}
}

func (a *app) handleExport(ctx context.Context, sub string, args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	kind := fs.String("kind", "articles", "collection to export: articles or clients")
	out := fs.String("out", "", "output path (defaults to data/<kind>.<format>)")
	_ = fs.Parse(args)

	switch sub {
	case "json":
		path := *out
		if path == "" {
			path = filepath.Join("data", *kind+".json")
		}
		if err := a.exportJSON(ctx, *kind, path); err != nil {
			log.Fatalf("export json failed: %v", err)
		}
		log.Printf("exported %s to %s", *kind, path)
	case "csv":
		path := *out
		if path == "" {
			path = filepath.Join("data", *kind+".csv")
		}
		if err := a.exportCSV(ctx, *kind, path); err != nil {
			log.Fatalf("export csv failed: %v", err)
		}
		log.Printf("exported %s to %s", *kind, path)
	default:
		log.Fatal("usage: adminhub export <json|csv> [-kind articles|clients]")
	}
}

func (a *app) exportJSON(ctx context.Context, kind, path string) error {
	var v any
	switch kind {
	case "articles":
		items, err := a.api.FetchArticles(ctx)
		if err != nil {
			return err
		}
		v = items
	case "clients":
		items, err := a.api.FetchClients(ctx)
		if err != nil {
			return err
		}
		v = items
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (a *app) exportCSV(ctx context.Context, kind, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	switch kind {
	case "articles":
		items, err := a.api.FetchArticles(ctx)
		if err != nil {
			return err
		}
		if err := w.Write([]string{"id", "title", "description", "link", "images", "created_at"}); err != nil {
			return err
		}
		for _, item := range items {
			link := ""
			if item.Link != nil {
				link = *item.Link
			}
			if err := w.Write([]string{
				fmt.Sprintf("%d", item.ID),
				item.Title,
				item.Description,
				link,
				strings.Join(item.Images, ";"),
				item.CreatedAt.Format("2006-01-02 15:04:05"),
			}); err != nil {
				return err
			}
		}
	case "clients":
		items, err := a.api.FetchClients(ctx)
		if err != nil {
			return err
		}
		if err := w.Write([]string{"client_id", "first_name", "last_name", "email", "phone_number", "gender", "date_of_birth", "address", "city", "join_date"}); err != nil {
			return err
		}
		for _, item := range items {
			dob := ""
			if item.DateOfBirth != nil {
				dob = item.DateOfBirth.Format("2006-01-02")
			}
			if err := w.Write([]string{
				fmt.Sprintf("%d", item.ClientID),
				item.FirstName,
				item.LastName,
				item.Email,
				item.PhoneNumber,
				item.Gender,
				dob,
				item.Address,
				item.City,
				item.JoinDate.Format("2006-01-02 15:04:05"),
			}); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	w.Flush()
	return w.Error()
}

// watch loads the view, subscribes it to the push channel, and blocks
// printing updates until interrupted.
func (a *app) watch(ctx context.Context, setup func(*console.Subscriber) error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sub := console.NewSubscriber(a.baseURL, a.token)
	if err := setup(sub); err != nil {
		log.Fatalf("load failed: %v", err)
	}
	sub.Start(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("[console] stopping watch")
}

func printArticles(items []models.Article) {
	fmt.Printf("---- %d article(s) ----\n", len(items))
	for _, a := range items {
		desc := a.Description
		if len(desc) > 60 {
			desc = desc[:57] + "..."
		}
		fmt.Printf("%4d  %-30s %-60s images=%d\n", a.ID, a.Title, desc, len(a.Images))
		for _, img := range a.Images {
			fmt.Printf("      %s\n", console.ImageURL(img))
		}
	}
}

func printClients(items []models.Client) {
	fmt.Printf("---- %d client(s) ----\n", len(items))
	for _, c := range items {
		fmt.Printf("%4d  %-20s %-20s %-30s %s\n", c.ClientID, c.FirstName, c.LastName, c.Email, c.City)
	}
}

func readUploads(spec string) []console.Upload {
	if strings.TrimSpace(spec) == "" {
		return nil
	}
	var uploads []console.Upload
	for _, path := range strings.Split(spec, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Fatalf("read image %s: %v", path, err)
		}
		uploads = append(uploads, console.Upload{
			Filename: filepath.Base(path),
			Data:     data,
		})
	}
	return uploads
}

func terminalConfirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func fileTokenSource(path string) console.TokenSource {
	return func() string {
		token, err := readToken(path)
		if err != nil {
			return ""
		}
		return token
	}
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.adminhub-token.json"
	}
	return filepath.Join(home, ".adminhub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func printUsage() {
	fmt.Println("adminhub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|logout")
	fmt.Println("  articles list|watch|create|update|delete")
	fmt.Println("  clients list|watch|create|update|delete")
	fmt.Println("  users list|add|delete")
	fmt.Println("  export json|csv")
}
