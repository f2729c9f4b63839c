package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"postcraft-cli/internal/api"
	"postcraft-cli/internal/brandkit"
	"postcraft-cli/internal/config"
	"postcraft-cli/internal/display"
	"postcraft-cli/internal/logging"
	"postcraft-cli/internal/pipeline"
	"postcraft-cli/internal/store"
	"postcraft-cli/internal/stream"
	"postcraft-cli/internal/tui"
)

const version = "0.1.0"

var activeProfile string

func main() {
	args := os.Args[1:]

	// Parse global flags first (--profile)
	args = parseGlobalFlags(args)

	// No args → launch interactive mode (default)
	if len(args) == 0 {
		runInteractive("")
		return
	}

	// Explicit -i flag also launches interactive mode
	if args[0] == "-i" || args[0] == "--interactive" || args[0] == "interactive" {
		runInteractive("")
		return
	}

	var err error

	switch args[0] {
	case "set":
		err = cmdSet(args[1:])
	case "config":
		err = cmdConfig()
	case "chat", "ask":
		err = cmdChat(args[1:])
	case "sessions":
		err = cmdSessions()
	case "resume":
		err = cmdResume(args[1:])
	case "gallery":
		err = cmdGallery(args[1:])
	case "transcript":
		err = cmdTranscript(args[1:])
	case "reset":
		err = cmdReset(args[1:])
	case "brand":
		err = cmdBrand(args[1:])
	case "health":
		err = cmdHealth()
	case "profiles":
		err = cmdProfiles()
	case "help", "--help", "-h":
		printUsage()
	case "version", "--version", "-v":
		fmt.Printf("postcraft %s\n", version)
	default:
		display.Error(fmt.Sprintf("Unknown command: %s", args[0]))
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		display.Error(err.Error())
		os.Exit(1)
	}
}

func runInteractive(resumeSessionID string) {
	cfg, err := config.Load(activeProfile)
	if err == nil {
		logging.Init(cfg.DataDir, cfg.Debug)
		defer logging.Sync()
	}
	if err := tui.Run(version, activeProfile, resumeSessionID); err != nil {
		display.Error(err.Error())
		os.Exit(1)
	}
}

// ─── set ────────────────────────────────────────────────────────────────────

func cmdSet(args []string) error {
	if len(args) < 2 {
		fmt.Println("Usage: postcraft set <key> <value>")
		fmt.Println()
		fmt.Println("Keys:")
		fmt.Println("  server   Agent server URL  (e.g. http://localhost:8000)")
		fmt.Println("  user     User id sent with each request")
		fmt.Println("  data     Directory for the local database and logs")
		return nil
	}

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]

	switch key {
	case "server":
		cfg.Server = value
	case "user":
		cfg.User = value
	case "data":
		cfg.DataDir = value
	default:
		return fmt.Errorf("unknown config key: %s (valid: server, user, data)", key)
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	display.Success(fmt.Sprintf("%s set to %s", key, value))
	return nil
}

// ─── config ─────────────────────────────────────────────────────────────────

func cmdConfig() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	display.Header("Postcraft Configuration")

	display.Info("Profile:", config.ProfileName(activeProfile))

	server := cfg.Server
	if server == "" {
		server = display.Dim + "(not set)" + display.Reset
	}
	display.Info("Server:", server)

	user := cfg.User
	if user == "" {
		user = display.Dim + "default_user" + display.Reset
	}
	display.Info("User:", user)

	display.Info("Data dir:", cfg.DataDir)

	debug := "off"
	if cfg.Debug {
		debug = "on"
	}
	display.Info("Debug:", debug)
	fmt.Println()

	return nil
}

// ─── chat (one-shot) ────────────────────────────────────────────────────────

func cmdChat(args []string) error {
	var sessionID string
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-s", "--session":
			if i+1 < len(args) {
				i++
				sessionID = args[i]
			} else {
				return fmt.Errorf("--session requires a value")
			}
		default:
			positional = append(positional, args[i])
		}
	}

	if len(positional) == 0 {
		fmt.Println("Usage: postcraft chat <message> [--session <id>]")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println(`  postcraft chat "Create an Instagram post for our summer sale"`)
		fmt.Println(`  postcraft chat "Make a carousel of 3 slides" -s <session-id>`)
		return nil
	}
	message := strings.Join(positional, " ")

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logging.Init(cfg.DataDir, cfg.Debug)
	defer logging.Sync()

	client := api.NewClient(cfg)

	if sessionID == "" {
		fmt.Println()
		display.Spinner("Creating session...")
		sessResp, err := client.NewSession()
		if err != nil {
			display.ClearLine()
			return fmt.Errorf("creating session: %w", err)
		}
		sessionID = sessResp.SessionID
		display.ClearLine()
		display.Success(fmt.Sprintf("Session: %s", sessionID))
	} else {
		fmt.Println()
		display.Success(fmt.Sprintf("Continuing session: %s", sessionID))
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	interp, err := pipeline.New(st, sessionID, logging.L())
	if err != nil {
		return err
	}
	if err := interp.RecordUserMessage(message); err != nil {
		return err
	}

	fmt.Println()
	streamedAny := false
	consumer := stream.NewConsumer(stream.Callbacks{
		OnFirstContent: func() {
			display.ClearLine()
		},
		OnDelta: func(content string) {
			streamedAny = true
			fmt.Print(content)
		},
		OnStatus: func(msg string) {
			if !streamedAny {
				display.ClearLine()
				display.Spinner(msg)
			}
		},
		OnError: func(msg string) {
			fmt.Println()
			display.Error(msg)
		},
	})

	display.Spinner("Waiting for the agent...")
	final, done, err := client.ChatStream(sessionID, message, consumer)
	fmt.Println()
	if err != nil {
		return fmt.Errorf("stream error: %w", err)
	}
	if !done {
		display.Warn("Stream ended before completion; nothing was saved.")
		return nil
	}

	result, err := interp.InterpretFinal(final)
	if err != nil {
		return err
	}

	// A structured envelope replaces the raw buffer, so the canonical text
	// is re-rendered even though deltas already went to the terminal.
	if result.Envelope != nil || !streamedAny {
		fmt.Println(renderMarkdown(result.Text))
	} else {
		fmt.Println()
	}

	for _, ch := range result.Changes {
		verb := "Updated"
		if ch.Created {
			verb = "Added"
		}
		display.Success(fmt.Sprintf("%s %s", verb, ch.MediaRef))
	}

	if len(result.Choices) > 0 {
		fmt.Println()
		display.SubHeader("Options:")
		for i, c := range result.Choices {
			icon := c.Icon
			if icon != "" {
				icon += " "
			}
			fmt.Printf("  %s%d.%s %s%s\n", display.Cyan, i+1, display.Reset, icon, c.Label)
			if c.Description != "" {
				fmt.Printf("     %s%s%s\n", display.Gray, c.Description, display.Reset)
			}
		}
		fmt.Printf("\n  %sReply with:%s postcraft chat \"<option value>\" -s %s\n", display.Dim, display.Reset, sessionID)
	}

	fmt.Printf("\n  %sTip:%s Run %spostcraft gallery %s%s to review generated content.\n\n",
		display.Dim, display.Reset, display.Cyan, sessionID, display.Reset)

	return nil
}

// ─── sessions ───────────────────────────────────────────────────────────────

func cmdSessions() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	sessions, err := st.Sessions()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}

	display.Header(fmt.Sprintf("Sessions (%d)", len(sessions)))

	if len(sessions) == 0 {
		display.Warn("No sessions found.")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("\n  💬 %s%s%s\n", display.Bold, s.SessionID, display.Reset)
		fmt.Printf("    %sCreated:%s  %s\n", display.Dim, display.Reset, display.FormatTime(s.Created))
		fmt.Printf("    %sMessages:%s %d\n", display.Dim, display.Reset, s.Messages)
		fmt.Printf("    %sItems:%s    %d\n", display.Dim, display.Reset, s.Items)
	}

	fmt.Println()
	fmt.Printf("  %sTip:%s Run %spostcraft resume <session-id>%s to pick one up.\n\n",
		display.Dim, display.Reset, display.Cyan, display.Reset)

	return nil
}

// ─── resume ─────────────────────────────────────────────────────────────────

func cmdResume(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: postcraft resume <session-id>")
		return nil
	}
	runInteractive(args[0])
	return nil
}

// ─── gallery ────────────────────────────────────────────────────────────────

func cmdGallery(args []string) error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	sessionID, err := pickSession(st, args)
	if err != nil {
		return err
	}

	items, err := st.LoadGallery(sessionID)
	if err != nil {
		return err
	}

	display.Header(fmt.Sprintf("Gallery — %s (%d items)", sessionID, len(items)))

	if len(items) == 0 {
		display.Warn("Nothing generated in this session yet.")
		return nil
	}

	// Newest first.
	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		fmt.Printf("\n  %s  %s%s%s\n", display.KindLabel(it.Kind), display.Bold, it.MediaRef, display.Reset)
		if it.Caption != "" {
			for _, line := range wrapText(it.Caption, 72) {
				fmt.Printf("    %s\n", line)
			}
		}
		if len(it.Hashtags) > 0 {
			fmt.Printf("    %s%s%s\n", display.Blue, strings.Join(it.Hashtags, " "), display.Reset)
		}
		fmt.Printf("    %s%s%s\n", display.Dim, display.FormatTime(it.CreatedAt), display.Reset)
	}

	fmt.Println()
	return nil
}

// ─── transcript ─────────────────────────────────────────────────────────────

func cmdTranscript(args []string) error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	sessionID, err := pickSession(st, args)
	if err != nil {
		return err
	}

	msgs, err := st.Transcript(sessionID)
	if err != nil {
		return err
	}

	display.Header(fmt.Sprintf("Transcript — %s (%d messages)", sessionID, len(msgs)))

	if len(msgs) == 0 {
		display.Warn("No messages recorded.")
		return nil
	}

	for _, msg := range msgs {
		if msg.Role == "user" {
			fmt.Printf("\n  %s❯%s %s\n", display.Cyan, display.Reset, msg.Content)
			continue
		}
		fmt.Println()
		for _, line := range wrapText(msg.Content, 76) {
			fmt.Printf("  %s\n", line)
		}
	}

	fmt.Println()
	return nil
}

// ─── reset ──────────────────────────────────────────────────────────────────

func cmdReset(args []string) error {
	if len(args) == 0 {
		fmt.Println("Usage: postcraft reset <session-id>")
		fmt.Println()
		fmt.Println("Wipes the session's transcript and gallery. The session id stays valid.")
		return nil
	}
	sessionID := args[0]

	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ResetSession(sessionID); err != nil {
		return err
	}

	display.Success(fmt.Sprintf("Session %s wiped (transcript and gallery)", sessionID))
	return nil
}

// ─── brand ──────────────────────────────────────────────────────────────────

func cmdBrand(args []string) error {
	var file, sessionID string
	var positional []string

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--file", "-f":
			if i+1 < len(args) {
				i++
				file = args[i]
			} else {
				return fmt.Errorf("--file requires a value")
			}
		case "-s", "--session":
			if i+1 < len(args) {
				i++
				sessionID = args[i]
			} else {
				return fmt.Errorf("--session requires a value")
			}
		default:
			positional = append(positional, args[i])
		}
	}

	presets, err := brandkit.Load(file)
	if err != nil {
		return err
	}

	if len(positional) == 0 || positional[0] == "list" {
		display.Header(fmt.Sprintf("Brand Presets (%d)", len(presets)))
		for _, p := range presets {
			fmt.Printf("\n  %s%s%s  %s%s, %s%s\n", display.Bold, p.Name, display.Reset,
				display.Dim, p.Industry, p.Tone, display.Reset)
			fmt.Printf("    %sColors:%s %s\n", display.Dim, display.Reset, strings.Join(p.Colors, " "))
			for _, line := range wrapText(p.Overview, 70) {
				fmt.Printf("    %s%s%s\n", display.Gray, line, display.Reset)
			}
		}
		fmt.Printf("\n  %sTip:%s Run %spostcraft brand use <name> -s <session-id>%s to apply one.\n\n",
			display.Dim, display.Reset, display.Cyan, display.Reset)
		return nil
	}

	if positional[0] == "use" {
		if len(positional) < 2 {
			fmt.Println("Usage: postcraft brand use <name> [--session <id>] [--file <path>]")
			return nil
		}
		name := strings.Join(positional[1:], " ")

		preset, ok := brandkit.Find(presets, name)
		if !ok {
			return fmt.Errorf("no preset named %q (run: postcraft brand list)", name)
		}

		chatArgs := []string{preset.SetupMessage()}
		if sessionID != "" {
			chatArgs = append(chatArgs, "--session", sessionID)
		}
		return cmdChat(chatArgs)
	}

	return fmt.Errorf("unknown brand subcommand: %s (valid: list, use)", positional[0])
}

// ─── health ─────────────────────────────────────────────────────────────────

func cmdHealth() error {
	cfg, err := config.Load(activeProfile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client := api.NewClient(cfg)

	resp, err := client.Health()
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	display.Success(fmt.Sprintf("Server is %s", resp.Status))
	if resp.Agent != "" {
		display.Info("Agent:", resp.Agent)
	}
	if resp.Version != "" {
		display.Info("Version:", resp.Version)
	}
	return nil
}

// ─── profiles ───────────────────────────────────────────────────────────────

func cmdProfiles() error {
	profiles, err := config.ListProfiles()
	if err != nil {
		return err
	}

	display.Header(fmt.Sprintf("Profiles (%d)", len(profiles)))

	if len(profiles) == 0 {
		display.Warn("No profiles found.")
		return nil
	}

	for _, p := range profiles {
		marker := " "
		if p == config.ProfileName(activeProfile) {
			marker = display.Green + "●" + display.Reset
		}
		fmt.Printf("  %s %s\n", marker, p)
	}
	fmt.Println()

	return nil
}

// ─── helpers ────────────────────────────────────────────────────────────────

// pickSession resolves an explicit session argument, falling back to the
// most recently created session in the store.
func pickSession(st *store.Store, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	sessions, err := st.Sessions()
	if err != nil {
		return "", err
	}
	if len(sessions) == 0 {
		return "", fmt.Errorf("no stored sessions (start one with: postcraft chat \"...\")")
	}
	return sessions[0].SessionID, nil
}

func renderMarkdown(text string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(96),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func wrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		if paragraph == "" {
			lines = append(lines, "")
			continue
		}
		words := strings.Fields(paragraph)
		current := ""
		for _, word := range words {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		}
	}
	return lines
}

func parseGlobalFlags(args []string) []string {
	var remaining []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--profile" {
			if i+1 < len(args) {
				i++
				activeProfile = args[i]
			}
			continue
		}
		remaining = append(remaining, args[i])
	}
	return remaining
}

// ─── usage ──────────────────────────────────────────────────────────────────

func printUsage() {
	fmt.Printf(`%sPostcraft CLI%s — terminal client for the marketing content agent (v%s)

%sUsage:%s
  postcraft                                          Launch interactive mode (default)
  postcraft [--profile <name>] <command> [arguments] Run a specific command

%sGetting Started:%s
  set server <url>          Point at the agent server  (e.g. http://localhost:8000)
  health                    Check the server is reachable
  chat "<message>"          Send one message and stream the reply

%sSettings:%s
  set server <url>          Agent server URL
  set user <id>             User id sent with each request
  set data <dir>            Directory for the local database and logs
  config                    Show current configuration

%sChat:%s
  chat|ask "<message>"      One-shot turn (streams output)
    -s, --session <id>      Continue an existing session

%sSessions:%s
  sessions                  List stored sessions
  resume <session-id>       Reopen a session in interactive mode
  transcript [session-id]   Print a session's transcript (defaults to latest)
  gallery [session-id]      Show generated content (defaults to latest)
  reset <session-id>        Wipe a session's transcript and gallery

%sBrand:%s
  brand list                Show built-in brand presets
  brand use <name>          Apply a preset (sends its setup message)
    -f, --file <path>       Load presets from a YAML file instead

%sProfiles:%s
  profiles                  List all config profiles
  --profile <name>          Use a named config profile (default: unnamed)

%sExamples:%s
  postcraft                                          # Start interactive mode
  postcraft set server http://localhost:8000
  postcraft chat "Create an Instagram post for our summer sale"
  postcraft chat "Make it more playful" -s <session-id>
  postcraft brand use "Velora Coffee"
  postcraft gallery
  postcraft --profile staging chat "Draft a product teaser"

`, display.Bold, display.Reset, version,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset,
		display.Cyan, display.Reset)
}
