package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/bartek5186/wooexport/internal/catalog"
	conf "github.com/bartek5186/wooexport/internal/config"
	"github.com/bartek5186/wooexport/internal/db"
	"github.com/spf13/cobra"
)

const shellHelp = "start | stop | reload | status | paths | run <url> | quit"

func shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive loop controlling the watch scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(os.Stdout)
			if err != nil {
				return err
			}
			defer a.close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return a.shell(ctx, cancel, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

func (a *app) shell(ctx context.Context, cancel context.CancelFunc, in io.Reader, out io.Writer) error {
	log := a.log
	s := a.newSyncer()
	log.Info().Msg("Aplikacja (CLI) uruchomiona")

	// AutoStart harmonogramu
	if a.cfg.AutoStart {
		if err := s.Start(ctx); err != nil {
			log.Error().Msgf("AutoStart nieudany: %v", err)
		} else {
			log.Info().Msgf("WooExport %s: watch działa", ver)
		}
	}

	fmt.Fprintln(out, "WooExport CLI", ver)
	fmt.Fprintln(out, "Komendy:", shellHelp)
	reader := bufio.NewReader(in)

	for {
		fmt.Fprint(out, "> ")
		line, readErr := reader.ReadString('\n')
		fields := strings.Fields(line)
		command := ""
		if len(fields) > 0 {
			command = strings.ToLower(fields[0])
		}

		switch command {
		case "start":
			if err := s.Start(ctx); err != nil {
				log.Error().Msgf("Start error: %v", err)
				fmt.Fprintln(out, "Błąd startu:", err)
				break
			}
			fmt.Fprintln(out, "Start OK")
		case "stop":
			s.Stop()
			fmt.Fprintln(out, "Zatrzymano")
		case "reload":
			newCfg, _, err := conf.LoadOrCreate(a.cfgPath)
			if err == nil {
				err = newCfg.ApplyEnv()
			}
			if err != nil {
				log.Error().Msgf("Błąd reloadu: %v", err)
				fmt.Fprintln(out, "Błąd reloadu:", err)
				break
			}
			a.cfg = newCfg
			s.UpdateConfig(newCfg)
			log.Info().Msg("Konfiguracja przeładowana")
			fmt.Fprintln(out, "Konfiguracja przeładowana")
		case "status":
			st := s.Status()
			state := "ZATRZYMANY"
			if st.Running {
				state = "DZIAŁA"
			}
			fmt.Fprintf(out, "Status: %s (cele: %d, przebiegi: %d, interwał: %s)\n", state, st.Targets, st.Ticks, st.Interval)
			if !st.LastRun.IsZero() {
				fmt.Fprintln(out, "Ostatni przebieg:", st.LastRun.Format(time.RFC3339))
			}
			if st.LastErr != "" {
				fmt.Fprintln(out, "Ostatni błąd:", st.LastErr)
			}
			a.printLastExports(out)
		case "paths":
			fmt.Fprintln(out, "Logi:", filepath.Join(a.dir, "app.log"))
			fmt.Fprintln(out, "Config:", a.cfgPath)
			if a.dbh != nil {
				fmt.Fprintln(out, "DB:", a.dbh.Path)
			}
		case "run":
			if len(fields) < 2 {
				fmt.Fprintln(out, "Użycie: run <url>")
				break
			}
			res, err := s.RunOnce(ctx, fields[1])
			if err != nil {
				fmt.Fprintln(out, "Błąd eksportu:", err)
				break
			}
			fmt.Fprintf(out, "OK: %s (produkty: %d, warianty: %d, obrazki: %d)\n",
				res.Files.ImportCSV, res.Summary.ProductsDiscovered, res.Summary.VariationsDiscovered, res.Summary.ImagesDownloaded)
		case "quit", "exit":
			cancel()
			s.Stop()
			return nil
		case "":
			// enter – ignoruj
		default:
			fmt.Fprintln(out, "Nieznana komenda. Użyj:", shellHelp)
		}

		if readErr != nil {
			// EOF na stdin = wyjście
			s.Stop()
			return nil
		}
	}
}

// printLastExports: katalog ostatniego udanego eksportu każdego celu watch.
func (a *app) printLastExports(out io.Writer) {
	if a.dbh == nil {
		return
	}
	for _, t := range a.cfg.Watch {
		root, err := catalog.NormalizeSiteRoot(t.URL)
		if err != nil {
			continue
		}
		if last, ok, err := db.GetKV(a.dbh.DB, db.LastExportKey(root)); err == nil && ok {
			fmt.Fprintf(out, "  %s -> %s\n", root, last)
		}
	}
}
