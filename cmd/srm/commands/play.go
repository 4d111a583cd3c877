package commands

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/wonny/srm-sim/internal/engine"
)

// playCmd represents the play command
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "대화형 게임 시작",
	Long: `구매 데스크에서 30일 게임을 직접 플레이합니다.

매 턴마다 발주, 대금 지급을 결정한 뒤 next로 하루를 진행합니다.
같은 --seed는 같은 게임을 재현합니다.

Example:
  go run ./cmd/srm play
  go run ./cmd/srm play --seed 42
  echo "order V-STD 300\nnext 5\nstatus" | go run ./cmd/srm play --plain --seed 1`,
	RunE: runPlay,
}

var (
	playSeed  int64
	playPlain bool
)

func init() {
	rootCmd.AddCommand(playCmd)

	// Flags
	playCmd.Flags().Int64Var(&playSeed, "seed", 0, "random seed (0 = SIM_SEED or time based)")
	playCmd.Flags().BoolVar(&playPlain, "plain", false, "line mode without TUI (reads commands from stdin)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	env, err := loadSimEnv()
	if err != nil {
		return err
	}

	opts := env.options()
	seed := playSeed
	if seed == 0 {
		seed = env.cfg.Sim.Seed
	}
	if seed != 0 {
		opts = append(opts, engine.WithSeed(seed))
	}

	session, err := engine.NewSession(env.session, opts...)
	if err != nil {
		return fmt.Errorf("new session: %w", err)
	}
	d := &desk{s: session}

	if playPlain {
		return runPlain(d, os.Stdin, os.Stdout)
	}

	_, err = tea.NewProgram(newPlayModel(d)).Run()
	return err
}

// runPlain feeds stdin lines to the desk until EOF or quit
func runPlain(d *desk, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "SRM simulator, seed %d. Type help for commands.\n", d.s.Seed())
	d.status(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "srm> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		if err := d.Exec(scanner.Text(), out); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintf(out, "❌ %v\n", err)
		}
	}
}

// playModel is the bubbletea model of the procurement desk
type playModel struct {
	desk  *desk
	input textinput.Model
}

func newPlayModel(d *desk) playModel {
	ti := textinput.New()
	ti.Prompt = "srm> "
	ti.Placeholder = "help"
	ti.CharLimit = 256
	ti.Focus()
	return playModel{desk: d, input: ti}
}

func (m playModel) Init() tea.Cmd {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "SRM simulator, seed %d. Type help for commands.\n", m.desk.s.Seed())
	m.desk.status(&buf)
	return tea.Batch(textinput.Blink, tea.Println(buf.String()))
}

func (m playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			line := m.input.Value()
			m.input.Reset()

			var buf bytes.Buffer
			fmt.Fprintf(&buf, "srm> %s\n", line)
			if err := m.desk.Exec(line, &buf); err != nil {
				if errors.Is(err, errQuit) {
					return m, tea.Sequence(tea.Println(buf.String()), tea.Quit)
				}
				fmt.Fprintf(&buf, "❌ %v\n", err)
			}
			return m, tea.Println(buf.String())
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m playModel) View() string {
	return m.input.View() + "\n"
}
