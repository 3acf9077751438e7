package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
	"holdem-server/internal/config"
	"holdem-server/pkg/db"
	"holdem-server/pkg/handmanager"
	"holdem-server/pkg/poker/simulator"
	"holdem-server/pkg/store/pgstore"
)

var command = flag.String("c", "simulate", "specifies the command (simulate, room, seat)")

var reader = bufio.NewReader(os.Stdin)

func main() {
	flag.Parse()

	ctx := context.Background()
	switch *command {
	case "simulate":
		simulate(ctx)
	case "room":
		createRoom(ctx)
	case "seat":
		seatPlayer(ctx)
	default:
		logrus.Fatalf("unknown command: %s", *command)
	}
}

func simulate(ctx context.Context) {
	hole := getCards("Hole cards")
	community := getCards("Community cards")
	opponents := getInt("Opponents", 1)
	trials := getInt("Trials", 0)

	req, err := simulator.NewRequest(hole, community, opponents, trials)
	if err != nil {
		logrus.WithError(err).Fatal("invalid hand")
	}

	cfg := config.Instance()
	sim := simulator.New(simulator.Options{
		DefaultTrials: cfg.Simulation.DefaultTrials,
		MaxTrials:     cfg.Simulation.MaxTrials,
		Workers:       cfg.Simulation.Workers,
	})

	result, err := sim.Simulate(ctx, req)
	if err != nil {
		logrus.WithError(err).Fatal("could not simulate")
	}

	// piped output is JSON
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
			logrus.WithError(err).Fatal("could not encode result")
		}
		return
	}

	fmt.Printf("\n%d trials\n", result.TrialCount)
	fmt.Printf("  %-16s %6.2f%%\n", "Win", result.WinProbability*100)
	fmt.Printf("  %-16s %6.2f%%\n", "Tie", result.TieProbability*100)
	fmt.Printf("  %-16s %6.2f%%\n\n", "Loss", result.LossProbability*100)

	type row struct {
		name string
		pct  float64
	}

	rows := make([]row, 0, len(result.HandDistribution))
	for hand, pct := range result.HandDistribution {
		rows = append(rows, row{hand.String(), pct})
	}

	sort.Slice(rows, func(i, j int) bool {
		return rows[i].pct > rows[j].pct
	})

	for _, r := range rows {
		fmt.Printf("  %-16s %6.2f%%\n", r.name, r.pct*100)
	}
}

func createRoom(ctx context.Context) {
	cfg := config.Instance()

	name, err := getInput("Name")
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	opts := handmanager.RoomOptions{
		Name:       name,
		SmallBlind: getInt("Small blind", cfg.Table.SmallBlind),
		BigBlind:   getInt("Big blind", cfg.Table.BigBlind),
		MaxPlayers: getInt("Max players", cfg.Table.MaxPlayers),
	}

	room, err := manager().CreateRoom(ctx, opts)
	if err != nil {
		logrus.WithError(err).Fatal("could not create room")
	}

	fmt.Printf("Created room %q (%s)\n", room.Name, room.ID)
}

func seatPlayer(ctx context.Context) {
	roomID, err := getInput("Room")
	if err != nil || roomID == "" {
		os.Exit(1)
	}

	playerID := getInt("Player", 0)
	seat := getInt("Seat", 0)
	chips := getInt("Chips", config.Instance().Table.StartingChips)

	rp, err := manager().SitDown(ctx, roomID, int64(playerID), seat, chips)
	if err != nil {
		logrus.WithError(err).Fatal("could not seat player")
	}

	fmt.Printf("Seated player %d in seat %d with %d chips\n", rp.PlayerID, rp.Seat, rp.Chips)
}

// manager runs against Postgres; the in-memory store would not outlive the command
func manager() *handmanager.Manager {
	if err := db.Migrate(); err != nil {
		logrus.WithError(err).Fatal("could not run migrations")
	}

	return handmanager.New(pgstore.New(db.Instance()))
}

// getCards reads space or comma separated card codes
func getCards(question string) []string {
	str, err := getInput(question)
	if err != nil {
		logrus.WithError(err).Fatal("could not get answer")
	}

	return strings.FieldsFunc(str, func(r rune) bool {
		return r == ' ' || r == ','
	})
}

func getInt(question string, def int) int {
	for {
		str, err := getInput(fmt.Sprintf("%s [%d]", question, def))
		if err != nil {
			logrus.WithError(err).Fatal("could not get answer")
		}

		if str == "" {
			return def
		}

		i, err := strconv.Atoi(str)
		if err != nil {
			_, _ = fmt.Fprintln(os.Stderr, "enter a number")
			continue
		}

		return i
	}
}

func getInput(question string) (string, error) {
	fmt.Printf("%s: ", question)
	str, err := reader.ReadString('\n')
	if err != nil && str == "" {
		return "", err
	}
	str = strings.TrimRight(str, "\r\n")

	return str, nil
}
