package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/config"
	"github.com/rostved/sitebook/editor"
	"github.com/rostved/sitebook/export"
	"github.com/rostved/sitebook/session"
	"github.com/rostved/sitebook/views"
)

var (
	// Global flags
	outDir string
	apiURL string
	debug  bool

	// Login flags
	email    string
	password string

	// Export flags
	dryRun bool
	noPDFs bool
)

var rootCmd = &cobra.Command{
	Use:           "sitebook",
	Short:         "Manage clients, jobs, quotes and invoices from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session token",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the session token",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and login state",
	RunE:  runStatus,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show outstanding balance and quoted pipeline",
	RunE:  runDashboard,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all clients, jobs, invoices, quotes and PDFs to the output directory",
	RunE:  runExport,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&outDir, "out-dir", config.DefaultOutDir, "Output directory for PDFs and exports")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", config.DefaultAPIURL, "Base URL of the service")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")

	loginCmd.Flags().StringVar(&email, "email", "", "Account email")
	loginCmd.Flags().StringVar(&password, "password", "", "Account password (read from SITEBOOK_PASSWORD or stdin when empty)")

	exportCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Run without writing files or updating export state")
	exportCmd.Flags().BoolVar(&noPDFs, "no-pdf", false, "Skip PDF downloads")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(jobsCmd)
	rootCmd.AddCommand(documentCommand(invoiceDocs))
	rootCmd.AddCommand(documentCommand(quoteDocs))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Println(err)
		os.Exit(1)
	}
}

// app is what every command needs once configuration is resolved.
type app struct {
	cfg     config.Config
	client  *api.Client
	session *session.Session
	notify  editor.Notifier
}

// logNotices sends notices to the log. Info notices need --debug; the
// commands that raise them print the document afterwards.
var logNotices = editor.NotifierFunc(func(n editor.Notice) {
	if debug || n.Kind != editor.NoticeInfo {
		log.Println(n.String())
	}
})

func setup(cmd *cobra.Command) (*app, error) {
	if debug {
		log.Println("Debug mode enabled")
	}

	cfg, err := config.Load(config.Dir(), ".env", debug)
	if err != nil {
		return nil, err
	}

	// Flags win over file and environment only when set explicitly.
	if flagChanged(cmd, "out-dir") {
		cfg.OutDir = config.ExpandTilde(outDir)
	}
	if flagChanged(cmd, "api-url") {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}

	client := api.NewClient(cfg.APIURL, cfg.Timeout.Duration)
	client.SetDebug(debug)

	sess, err := session.Open(session.NewStore(cfg.TokenFile), client)
	if err != nil {
		return nil, err
	}
	client.SetToken(sess.Token())

	return &app{cfg: cfg, client: client, session: sess, notify: logNotices}, nil
}

func flagChanged(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name) || rootCmd.PersistentFlags().Changed(name)
}

// authed is setup plus the login guard.
func authed(cmd *cobra.Command) (*app, error) {
	a, err := setup(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := a.session.Require(); err != nil {
		return nil, err
	}
	return a, nil
}

// check turns a rejected token into a logout so the next command asks for a
// fresh login.
func (a *app) check(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrUnauthorized) {
		if logoutErr := a.session.Logout(); logoutErr != nil {
			log.Printf("Could not clear session: %v", logoutErr)
		}
		return session.ErrNotAuthenticated
	}
	return err
}

var stdin = bufio.NewReader(os.Stdin)

func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question on stdin. Anything but y or yes is a no.
func confirm(prompt string) bool {
	answer, err := readLine(prompt + " [y/N] ")
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	}
	return false
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	if email == "" {
		if email, err = readLine("Email: "); err != nil {
			return err
		}
	}
	if password == "" {
		password = os.Getenv("SITEBOOK_PASSWORD")
	}
	if password == "" {
		if password, err = readLine("Password: "); err != nil {
			return err
		}
	}

	if err := a.session.Login(email, password); err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", a.session.Email())
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := setup(cmd)
	if err != nil {
		return err
	}

	fmt.Printf("Config dir: %s\n", a.cfg.Dir)
	fmt.Printf("API URL:    %s\n", a.cfg.APIURL)
	fmt.Printf("Output dir: %s\n", a.cfg.OutDir)
	fmt.Printf("Currency:   %s\n", a.cfg.Currency)
	if a.session.IsAuthenticated() {
		fmt.Printf("Logged in as %s\n", a.session.Email())
	} else {
		fmt.Println("Not logged in. Run 'sitebook login'.")
	}
	return nil
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	summary, err := a.client.DashboardSummary()
	if err != nil {
		return a.check(err)
	}
	return views.Dashboard(os.Stdout, a.cfg.Currency, summary)
}

func runExport(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(a.cfg.OutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	manifest := export.NewManifest(filepath.Join(a.cfg.OutDir, "export-state.json"))
	if err := manifest.Load(); err != nil {
		log.Printf("Could not load export state (starting fresh?): %v", err)
	}

	log.Printf("Starting export to %s...", a.cfg.OutDir)
	if dryRun {
		log.Println("DRY RUN MODE: No files will be written, state will not be updated.")
	}

	res, err := export.Run(a.client, manifest, export.Options{
		OutDir:   a.cfg.OutDir,
		DryRun:   dryRun,
		SkipPDFs: noPDFs,
		Debug:    debug,
		Notify:   a.notify,
	})
	if err != nil {
		return a.check(err)
	}

	log.Printf("Exported %d clients, %d jobs, %d invoices, %d quotes, %d PDFs (%d unchanged).",
		res.Clients, res.Jobs, res.Invoices, res.Quotes, res.PDFs, res.PDFsSkipped)
	if res.Errors > 0 {
		return fmt.Errorf("export completed with %d error(s)", res.Errors)
	}
	log.Println("Export completed successfully.")
	return nil
}
