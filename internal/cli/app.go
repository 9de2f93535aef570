package cli

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/dmitrijs2005/keyfold/internal/auth"
	"github.com/dmitrijs2005/keyfold/internal/config"
	"github.com/dmitrijs2005/keyfold/internal/logging"
	"github.com/dmitrijs2005/keyfold/internal/mailer"
	"github.com/dmitrijs2005/keyfold/internal/repositories"
	"github.com/dmitrijs2005/keyfold/internal/totp"

	_ "modernc.org/sqlite"
)

type App struct {
	config *config.Config
	flow   *auth.Flow
	repos  *repositories.Repositories
	log    logging.Logger
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, log logging.Logger) (*App, error) {

	ctx := context.Background()

	repos, err := repositories.InitDatabase(ctx, c.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err.Error())
		return nil, err
	}

	engine := totp.NewEngine(totp.Config{
		Issuer: c.Issuer,
		Digits: c.TOTPDigits,
		Period: c.TOTPPeriod,
		Skew:   c.TOTPSkew,
	})
	m := mailer.New(mailer.Config{
		Host:     c.SMTPHost,
		Port:     c.SMTPPort,
		Username: c.SMTPUsername,
		Password: c.SMTPPassword,
		From:     c.SMTPFrom,
		Security: c.SMTPSecurity,
	}, log, os.Stdout)

	flow, err := auth.NewFlow(ctx, repos.Metadata, engine, m, log, auth.Options{
		Issuer:          c.Issuer,
		EmailCodeTTL:    c.EmailCodeTTL,
		MaxCodeAttempts: c.MaxCodeAttempts,
		AttemptCooldown: c.AttemptCooldown,
		SessionTTL:      c.SessionTTL,
		MinPasswordLen:  c.MinPasswordLen,
	})
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	return &App{
		config: c,
		flow:   flow,
		repos:  repos,
		log:    log,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// state reports the ceremony state the REPL builds its prompt and help from.
func (a *App) state() auth.State {
	return a.flow.State()
}

// status renders the prompt suffix, e.g. "(user@example.com session_granted)".
func (a *App) status() string {
	s := string(a.flow.State())
	if email := a.flow.Email(); email != "" {
		s = mailer.MaskAddress(email) + " " + s
	}
	return "(" + s + ")"
}

func (a *App) Run(ctx context.Context) {
	defer a.repos.Close()

	printlnFn("Keyfold vault (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}
