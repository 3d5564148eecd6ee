package standings

import (
	"github.com/shopspring/decimal"

	"github.com/sam-maryland/around-the-table/internal/league"
)

// Cell is one debtor/creditor entry of the payout matrix. Amount is in
// dollars rounded to the cent; AmountCents carries the same value in cents.
type Cell struct {
	Debtor      string          `json:"debtor"`
	Creditor    string          `json:"creditor"`
	Amount      decimal.Decimal `json:"amount"`
	AmountCents int64           `json:"amount_cents"`
}

// Owes reports whether the debtor pays the creditor anything
func (c Cell) Owes() bool {
	return c.Amount.GreaterThan(decimal.Zero)
}

// String renders the cell as "$30.00", or "-" when nothing is owed
func (c Cell) String() string {
	if !c.Owes() {
		return "-"
	}
	return FormatDollars(c.Amount)
}

// Matrix is the pairwise settlement table. Rows are debtors and columns are
// creditors, both in roster order.
type Matrix struct {
	Players []string `json:"players"`
	Cells   [][]Cell `json:"cells"`
}

// Owed returns what debtor owes creditor in cents and whether the cell is populated
func (m Matrix) Owed(debtor, creditor string) (int64, bool) {
	di, ci := m.index(debtor), m.index(creditor)
	if di < 0 || ci < 0 {
		return 0, false
	}
	cell := m.Cells[di][ci]
	return cell.AmountCents, cell.Owes()
}

// Rows renders the matrix as text, with a header row of creditor names
func (m Matrix) Rows() [][]string {
	header := append([]string{"Player / Owes"}, m.Players...)
	rows := [][]string{header}
	for i, name := range m.Players {
		row := []string{name}
		for _, cell := range m.Cells[i] {
			row = append(row, cell.String())
		}
		rows = append(rows, row)
	}
	return rows
}

func (m Matrix) index(name string) int {
	for i, p := range m.Players {
		if p == name {
			return i
		}
	}
	return -1
}

// ComputePayouts builds the settlement matrix. Each player's balance is split
// into a per-opponent share rounded to the cent; a debtor owes a creditor the
// difference of their shares when it is at least one cent. Self pairs and
// non-positive differences stay empty.
func (e *Engine) ComputePayouts(players []league.Player) Matrix {
	n := len(players)
	m := Matrix{
		Players: make([]string, n),
		Cells:   make([][]Cell, n),
	}

	shares := make([]decimal.Decimal, n)
	for i, p := range players {
		m.Players[i] = p.Name
		shares[i] = e.perPlayerShare(p, n)
	}

	for i, debtor := range players {
		m.Cells[i] = make([]Cell, n)
		for j, creditor := range players {
			cell := Cell{Debtor: debtor.Name, Creditor: creditor.Name}
			if i != j {
				if owed := shares[j].Sub(shares[i]); owed.GreaterThanOrEqual(oneCent) {
					cell.Amount = owed
					cell.AmountCents = owed.Shift(2).IntPart()
				}
			}
			m.Cells[i][j] = cell
		}
	}

	return m
}

var oneCent = decimal.New(1, -2)

// perPlayerShare is NetBalance / (n - 1) in dollars, rounded half away from
// zero to the cent
func (e *Engine) perPlayerShare(p league.Player, n int) decimal.Decimal {
	if n <= 1 {
		return decimal.Zero
	}
	balance := decimal.NewFromInt(int64(e.NetBalance(p, n)))
	return balance.DivRound(decimal.NewFromInt(int64(n-1)), 2)
}

// FormatDollars renders an amount as dollars with two decimals, e.g. "$30.00"
func FormatDollars(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return "-$" + amount.Neg().StringFixed(2)
	}
	return "$" + amount.StringFixed(2)
}
