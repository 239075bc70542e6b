package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/motoescola/backoffice/internal/config"
	"github.com/motoescola/backoffice/internal/entity"
	"github.com/motoescola/backoffice/internal/infra/integration/leadapi"
	"github.com/motoescola/backoffice/internal/logger"
	"github.com/motoescola/backoffice/internal/pipeline"
	"github.com/motoescola/backoffice/internal/session"
)

const usage = `uso: kanban [-api URL] [-session ARQUIVO] <comando>

comandos:
  login -u USUARIO [-p SENHA]     abre sessão (senha via -p, KANBAN_PASSWORD ou stdin)
  logout                          encerra a sessão local
  board                           mostra o funil
  move LEAD_ID ETAPA [POSICAO]    move o card (posição 0 = topo; sem posição = fim da coluna)
  history LEAD_ID                 trocas de etapa do lead
`

func main() {
	cfg := config.Load()
	logger.Init("kanban")
	logger.Logger.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

type app struct {
	store  *session.Store
	client *leadapi.Client
	stdin  io.Reader
	out    io.Writer
}

func run(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("kanban", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	apiURL := fs.String("api", cfg.LeadsAPIURL, "URL do serviço de leads")
	sessionPath := fs.String("session", session.DefaultPath(), "arquivo da sessão")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	a := &app{
		store: session.NewStore(*sessionPath),
		stdin: stdin,
		out:   stdout,
	}

	sess, err := a.store.Load()
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		fmt.Fprintf(stderr, "sessão ilegível (%v); faça login de novo\n", err)
	}
	a.client = leadapi.NewClient(*apiURL, cfg.HTTPTimeout, sess)

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "login":
		err = a.login(ctx, rest, stderr)
	case "logout":
		err = a.logout()
	case "board":
		err = a.requireSession(sess, func() error { return a.board(ctx) })
	case "move":
		err = a.requireSession(sess, func() error { return a.move(ctx, rest) })
	case "history":
		err = a.requireSession(sess, func() error { return a.history(ctx, rest) })
	default:
		fmt.Fprintf(stderr, "comando desconhecido: %s\n\n", cmd)
		fs.Usage()
		return 2
	}

	if err != nil {
		if cmd != "login" && leadapi.IsUnauthorized(err) {
			fmt.Fprintln(stderr, "sessão expirada ou inválida; rode 'kanban login'")
		} else {
			fmt.Fprintf(stderr, "erro: %v\n", err)
		}
		return 1
	}
	return 0
}

func (a *app) requireSession(sess *session.Session, fn func() error) error {
	if sess == nil {
		return errors.New("sem sessão; rode 'kanban login'")
	}
	return fn()
}

func (a *app) login(ctx context.Context, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stderr)
	user := fs.String("u", "", "usuário")
	pass := fs.String("p", os.Getenv("KANBAN_PASSWORD"), "senha")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		return errors.New("informe o usuário com -u")
	}

	if *pass == "" {
		fmt.Fprint(a.out, "senha: ")
		line, err := bufio.NewReader(a.stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("lendo senha: %w", err)
		}
		*pass = strings.TrimSpace(line)
	}

	sess, err := a.client.Login(ctx, *user, *pass)
	if err != nil {
		return err
	}
	if err := a.store.Save(sess); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "sessão aberta para %s até %s\n", sess.Username, sess.ExpiresAt.Local().Format("02/01 15:04"))
	return nil
}

func (a *app) logout() error {
	if err := a.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "sessão encerrada")
	return nil
}

func (a *app) board(ctx context.Context) error {
	b := pipeline.NewBoard(a.client)
	if err := b.Refresh(ctx); err != nil {
		return err
	}
	return renderBoard(a.out, b.Snapshot())
}

func (a *app) move(ctx context.Context, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errors.New("uso: kanban move LEAD_ID ETAPA [POSICAO]")
	}

	to, ok := entity.ParseStage(args[1])
	if !ok || !to.IsBoardColumn() {
		return fmt.Errorf("etapa inválida %q; use uma coluna do quadro", args[1])
	}

	var confirmErr error
	b := pipeline.NewBoard(a.client, pipeline.WithOnMoveFailed(func(_ pipeline.Move, err error) {
		confirmErr = err
	}))
	if err := b.Refresh(ctx); err != nil {
		return err
	}

	snap := b.Snapshot()
	from, fromIndex, found := snap.Find(args[0])
	if !found {
		return fmt.Errorf("lead %s não está em nenhuma coluna do quadro", args[0])
	}

	// sem posição, vai para o fim; na mesma coluna o fim conta sem o próprio card
	toIndex := len(snap.Columns[to])
	if to == from {
		toIndex--
	}
	if len(args) == 3 {
		n, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("posição inválida %q", args[2])
		}
		toIndex = n
	}

	err := b.RequestMove(ctx, pipeline.Move{
		LeadID:    args[0],
		From:      from,
		FromIndex: fromIndex,
		To:        to,
		ToIndex:   toIndex,
	})
	b.Wait()
	if err != nil {
		return err
	}
	if confirmErr != nil {
		fmt.Fprintln(a.out, "servidor recusou o movimento; quadro recarregado:")
		if rerr := renderBoard(a.out, b.Snapshot()); rerr != nil {
			return rerr
		}
		return confirmErr
	}

	return renderBoard(a.out, b.Snapshot())
}

func (a *app) history(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("uso: kanban history LEAD_ID")
	}
	changes, err := a.client.GetHistory(ctx, args[0])
	if err != nil {
		return err
	}
	return renderHistory(a.out, changes)
}
