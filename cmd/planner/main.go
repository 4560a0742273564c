// Command planner is the Planner CLI client.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/GoCodeAlone/planner/internal/version"
)

const defaultServer = "http://localhost:9090"

func main() {
	var (
		serverURL = flag.String("server", defaultServer, "planner server URL")
		token     = flag.String("token", os.Getenv("PLANNER_TOKEN"), "JWT auth token")
	)
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	cli := &Client{
		BaseURL:    strings.TrimRight(*serverURL, "/"),
		Token:      *token,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}

	cmd := args[0]
	rest := args[1:]

	var err error
	switch cmd {
	case "version":
		err = cmdVersion(rest)
	case "status":
		err = cli.cmdStatus(rest)
	case "register":
		err = cli.cmdRegister(rest)
	case "login":
		err = cli.cmdLogin(rest)
	case "projects":
		err = cli.cmdProjects(rest)
	case "project":
		err = cli.cmdProject(rest)
	case "tasks":
		err = cli.cmdTasks(rest)
	case "task":
		err = cli.cmdTask(rest)
	case "schedule":
		err = cli.cmdSchedule(rest)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `planner — Planner CLI

Usage:
  planner [flags] <command> [args]

Flags:
  --server  <url>    server URL (default: http://localhost:9090)
  --token   <token>  JWT auth token (or $PLANNER_TOKEN)

Commands:
  version                      print version
  status                       show server status
  register <name> <email>      create an account (password prompted via stdin)
  login <email>                log in and print a token (password via stdin)
  projects                     list your projects
  project create <name>        create a project
  project join <invite-code>   join a project by invite code
  tasks <project-id>           list the tasks in a project
  task create <project-id> <effort> <title>   create a task
  task delete <task-id>        delete a task
  schedule <project-id>        generate the project schedule
`)
}

// --- version ---

func cmdVersion(_ []string) error {
	fmt.Printf("planner %s (commit %s, built %s)\n",
		version.Version, version.Commit, version.BuildDate)
	return nil
}

// Client holds HTTP client state for CLI commands.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// get performs a GET and decodes JSON into v.
func (c *Client) get(path string, v any) error {
	return c.do(http.MethodGet, path, nil, v)
}

// post performs a POST and decodes JSON response into v (may be nil).
func (c *Client) post(path string, body io.Reader, v any) error {
	return c.do(http.MethodPost, path, body, v)
}

func (c *Client) do(method, path string, body io.Reader, v any) error {
	req, err := http.NewRequest(method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck
	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if v != nil && resp.ContentLength != 0 {
		return json.NewDecoder(resp.Body).Decode(v)
	}
	return nil
}

// --- status ---

func (c *Client) cmdStatus(_ []string) error {
	var result map[string]any
	if err := c.get("/api/status", &result); err != nil {
		return err
	}
	fmt.Printf("status:  %s\n", strVal(result["status"]))
	fmt.Printf("version: %s\n", strVal(result["version"]))
	return nil
}

// --- auth ---

func (c *Client) cmdRegister(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: planner register <name> <email>")
	}
	password, err := readLine("password: ")
	if err != nil {
		return err
	}
	body := fmt.Sprintf(`{"name":%q,"email":%q,"password":%q}`, args[0], args[1], password)
	var result map[string]any
	if err := c.post("/api/auth/register", strings.NewReader(body), &result); err != nil {
		return err
	}
	fmt.Printf("registered user %s\n", strVal(result["id"]))
	return nil
}

func (c *Client) cmdLogin(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: planner login <email>")
	}
	password, err := readLine("password: ")
	if err != nil {
		return err
	}
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, args[0], password)
	var result map[string]string
	if err := c.post("/api/auth/login", strings.NewReader(body), &result); err != nil {
		return err
	}
	fmt.Println(result["token"])
	return nil
}

// --- projects ---

func (c *Client) cmdProjects(_ []string) error {
	var projects []map[string]any
	if err := c.get("/api/projects", &projects); err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Println("no projects")
		return nil
	}
	fmt.Printf("%-36s %-30s %-10s\n", "ID", "NAME", "INVITE")
	fmt.Println(strings.Repeat("-", 80))
	for _, p := range projects {
		fmt.Printf("%-36s %-30s %-10s\n",
			strVal(p["id"]),
			truncate(strVal(p["name"]), 29),
			strVal(p["invite_code"]),
		)
	}
	return nil
}

// --- project subcommands ---

func (c *Client) cmdProject(args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: planner project <create|join> <arg>")
		os.Exit(1)
	}
	sub := args[0]
	switch sub {
	case "create":
		name := strings.Join(args[1:], " ")
		body := fmt.Sprintf(`{"name":%q}`, name)
		var result map[string]any
		if err := c.post("/api/projects", strings.NewReader(body), &result); err != nil {
			return err
		}
		fmt.Printf("created project %s (invite code %s)\n",
			strVal(result["id"]), strVal(result["invite_code"]))
	case "join":
		body := fmt.Sprintf(`{"invite_code":%q}`, args[1])
		var result map[string]any
		if err := c.post("/api/projects/join", strings.NewReader(body), &result); err != nil {
			return err
		}
		fmt.Printf("joined project %s\n", strVal(result["name"]))
	default:
		return fmt.Errorf("unknown project subcommand: %s", sub)
	}
	return nil
}

// --- tasks ---

func (c *Client) cmdTasks(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: planner tasks <project-id>")
	}
	var tasks []map[string]any
	if err := c.get("/api/tasks?project_id="+args[0], &tasks); err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("no tasks")
		return nil
	}
	fmt.Printf("%-36s %-30s %-12s %-10s\n", "ID", "TITLE", "STATUS", "EFFORT")
	fmt.Println(strings.Repeat("-", 92))
	for _, t := range tasks {
		fmt.Printf("%-36s %-30s %-12s %-10s\n",
			strVal(t["id"]),
			truncate(strVal(t["title"]), 29),
			strVal(t["status"]),
			strVal(t["effort_level"]),
		)
	}
	return nil
}

// --- task subcommands ---

func (c *Client) cmdTask(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: planner task <create|delete> ...")
		os.Exit(1)
	}
	sub := args[0]
	switch sub {
	case "create":
		if len(args) < 4 {
			return fmt.Errorf("usage: planner task create <project-id> <effort> <title>")
		}
		title := strings.Join(args[3:], " ")
		body := fmt.Sprintf(`{"project_id":%q,"effort_level":%q,"title":%q}`,
			args[1], strings.ToUpper(args[2]), title)
		var result map[string]any
		if err := c.post("/api/tasks", strings.NewReader(body), &result); err != nil {
			return err
		}
		fmt.Printf("created task %s\n", strVal(result["id"]))
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("usage: planner task delete <task-id>")
		}
		if err := c.do(http.MethodDelete, "/api/tasks/"+args[1], nil, nil); err != nil {
			return err
		}
		fmt.Printf("deleted task %s\n", args[1])
	default:
		return fmt.Errorf("unknown task subcommand: %s", sub)
	}
	return nil
}

// --- schedule ---

func (c *Client) cmdSchedule(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: planner schedule <project-id>")
	}
	var result struct {
		Tasks []map[string]any `json:"tasks"`
		Total int64            `json:"total_days"`
	}
	if err := c.post("/api/projects/"+args[0]+"/schedule", nil, &result); err != nil {
		return err
	}
	fmt.Printf("%-36s %-30s %-22s %-22s\n", "ID", "TITLE", "START", "END")
	fmt.Println(strings.Repeat("-", 112))
	for _, t := range result.Tasks {
		fmt.Printf("%-36s %-30s %-22s %-22s\n",
			strVal(t["id"]),
			truncate(strVal(t["title"]), 29),
			strVal(t["start_date"]),
			strVal(t["end_date"]),
		)
	}
	fmt.Printf("total span: %d days\n", result.Total)
	return nil
}

// --- helpers ---

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return line, nil
}

func strVal(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
