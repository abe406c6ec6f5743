package bot

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const (
	maxDiceCount = 100
	maxDiceSides = 1000
)

// parseDice parses "NdM" notation ("2d6", "d20", "8"). An empty spec
// means one six-sided die; a bare number means one die with that many
// sides.
func parseDice(spec string) (count, sides int, err error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" {
		return 1, 6, nil
	}

	countStr, sidesStr, found := strings.Cut(spec, "d")
	if !found {
		sidesStr = spec
		countStr = "1"
	}
	if countStr == "" {
		countStr = "1"
	}

	count, err = strconv.Atoi(countStr)
	if err != nil {
		return 0, 0, fmt.Errorf("bad dice count %q", countStr)
	}
	sides, err = strconv.Atoi(sidesStr)
	if err != nil {
		return 0, 0, fmt.Errorf("bad dice sides %q", sidesStr)
	}
	if count < 1 || count > maxDiceCount {
		return 0, 0, fmt.Errorf("dice count must be 1-%d", maxDiceCount)
	}
	if sides < 2 || sides > maxDiceSides {
		return 0, 0, fmt.Errorf("dice sides must be 2-%d", maxDiceSides)
	}
	return count, sides, nil
}

// rollDice rolls and formats the result, e.g. "2d6: 3 + 5 = 8".
func rollDice(count, sides int) string {
	if count == 1 {
		return fmt.Sprintf("\U0001F3B2 1d%d: **%d**", sides, 1+rand.Intn(sides))
	}
	total := 0
	parts := make([]string, count)
	for i := range parts {
		n := 1 + rand.Intn(sides)
		total += n
		parts[i] = strconv.Itoa(n)
	}
	return fmt.Sprintf("\U0001F3B2 %dd%d: %s = **%d**", count, sides,
		strings.Join(parts, " + "), total)
}
