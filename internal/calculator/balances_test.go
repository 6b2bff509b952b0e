package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/models"
)

func evenTx(id, amount, payer string, participants []string, statuses map[string]models.SettlementStatus) TransactionForBalance {
	return TransactionForBalance{
		ID:           id,
		Amount:       d(amount),
		PayerID:      payer,
		Participants: participants,
		SplitType:    models.SplitEven,
		Statuses:     statuses,
	}
}

func pending(ids ...string) map[string]models.SettlementStatus {
	m := make(map[string]models.SettlementStatus, len(ids))
	for _, id := range ids {
		m[id] = models.StatusPending
	}
	return m
}

func TestCalculateGroupBalances_TwoMembers(t *testing.T) {
	txs := []TransactionForBalance{
		evenTx("t1", "100", "A", []string{"A", "B"}, pending("B")),
	}

	got, err := CalculateGroupBalances([]string{"A", "B"}, txs)
	require.NoError(t, err)

	a, b := got.Members["A"], got.Members["B"]
	assertMoney(t, "50", a.Balance)
	assertMoney(t, "-50", b.Balance)
	assertMoney(t, "100", a.TotalPaid)
	assertMoney(t, "0", a.TotalShare)
	assertMoney(t, "50", b.TotalShare)
	assertMoney(t, "50", a.OwedBy["B"])
	assertMoney(t, "50", b.OwesTo["A"])
	assert.NotContains(t, a.OwesTo, "A", "payer never owes self")
	assertMoney(t, "100", got.TotalGroupSpending)

	require.Len(t, got.SuggestedTransfers, 1)
	assert.Equal(t, "B", got.SuggestedTransfers[0].From)
	assert.Equal(t, "A", got.SuggestedTransfers[0].To)
	assertMoney(t, "50", got.SuggestedTransfers[0].Amount)
}

func TestCalculateGroupBalances_ResolvedSettlementsLeaveOutstandingView(t *testing.T) {
	for _, status := range []models.SettlementStatus{models.StatusPaid, models.StatusSuccess, models.StatusReject} {
		t.Run(string(status), func(t *testing.T) {
			txs := []TransactionForBalance{
				evenTx("t1", "100", "A", []string{"A", "B"}, map[string]models.SettlementStatus{"B": status}),
			}
			got, err := CalculateGroupBalances([]string{"A", "B"}, txs)
			require.NoError(t, err)

			assert.True(t, got.Members["A"].Balance.IsZero())
			assert.True(t, got.Members["B"].Balance.IsZero())
			assert.Empty(t, got.Members["A"].OwedBy)
			assert.Empty(t, got.Members["B"].OwesTo)
			// Lifetime read model still counts the expense
			assertMoney(t, "100", got.Members["A"].TotalPaid)
			assertMoney(t, "50", got.Members["B"].TotalShare)
			assertMoney(t, "100", got.TotalGroupSpending)
			assert.Empty(t, got.SuggestedTransfers)
		})
	}
}

func TestCalculateGroupBalances_MixedStatusesInOneTransaction(t *testing.T) {
	txs := []TransactionForBalance{
		evenTx("t1", "90", "A", []string{"A", "B", "C"}, map[string]models.SettlementStatus{
			"B": models.StatusPending,
			"C": models.StatusSuccess,
		}),
	}
	got, err := CalculateGroupBalances([]string{"A", "B", "C"}, txs)
	require.NoError(t, err)

	assertMoney(t, "30", got.Members["A"].Balance)
	assertMoney(t, "-30", got.Members["B"].Balance)
	assert.True(t, got.Members["C"].Balance.IsZero())
}

func TestCalculateGroupBalances_MemberWithoutActivity(t *testing.T) {
	got, err := CalculateGroupBalances([]string{"A", "B", "Z"}, []TransactionForBalance{
		evenTx("t1", "20", "A", []string{"A", "B"}, pending("B")),
	})
	require.NoError(t, err)

	z, ok := got.Members["Z"]
	require.True(t, ok, "idle member still reported")
	assert.True(t, z.Balance.IsZero())
	assert.True(t, z.TotalPaid.IsZero())
	assert.True(t, z.TotalShare.IsZero())
	assert.Empty(t, z.OwesTo)
	assert.Empty(t, z.OwedBy)
}

func TestCalculateGroupBalances_SkipsIncompleteRecords(t *testing.T) {
	got, err := CalculateGroupBalances([]string{"A", "B"}, []TransactionForBalance{
		evenTx("no-payer", "20", "", []string{"A", "B"}, pending("B")),
		evenTx("no-participants", "20", "A", nil, nil),
	})
	require.NoError(t, err)
	assert.True(t, got.TotalGroupSpending.IsZero())
	assert.True(t, got.Members["A"].TotalPaid.IsZero())
}

func TestCalculateGroupBalances_CustomSplit(t *testing.T) {
	tx := TransactionForBalance{
		ID:            "t1",
		Amount:        d("100"),
		PayerID:       "A",
		Participants:  []string{"A", "B", "C"},
		SplitType:     models.SplitCustom,
		CustomAmounts: map[string]decimal.Decimal{"A": d("20"), "B": d("70"), "C": d("10")},
		Statuses:      pending("B", "C"),
	}
	got, err := CalculateGroupBalances([]string{"A", "B", "C"}, []TransactionForBalance{tx})
	require.NoError(t, err)

	assertMoney(t, "80", got.Members["A"].Balance)
	assertMoney(t, "-70", got.Members["B"].Balance)
	assertMoney(t, "-10", got.Members["C"].Balance)
}

func TestCalculateGroupBalances_BadSplitIsAnError(t *testing.T) {
	tx := TransactionForBalance{
		ID:            "t1",
		Amount:        d("100"),
		PayerID:       "A",
		Participants:  []string{"A", "B"},
		SplitType:     models.SplitCustom,
		CustomAmounts: map[string]decimal.Decimal{"A": d("1"), "B": d("1")},
		Statuses:      pending("B"),
	}
	_, err := CalculateGroupBalances([]string{"A", "B"}, []TransactionForBalance{tx})
	assert.Error(t, err)
}

func TestCalculateGroupBalances_Conservation(t *testing.T) {
	members := []string{"A", "B", "C", "D"}
	txs := []TransactionForBalance{
		evenTx("t1", "100", "A", []string{"A", "B", "C"}, pending("B", "C")),
		evenTx("t2", "45.50", "B", []string{"A", "B", "C", "D"}, pending("A", "C", "D")),
		evenTx("t3", "7.01", "C", []string{"A", "D"}, pending("A", "D")),
		evenTx("t4", "60", "D", []string{"A", "D"}, map[string]models.SettlementStatus{"A": models.StatusPaid}),
	}
	got, err := CalculateGroupBalances(members, txs)
	require.NoError(t, err)

	net := decimal.Zero
	owesYou, youOwe := decimal.Zero, decimal.Zero
	for _, m := range members {
		net = net.Add(got.Members[m].Balance)
		s := got.Simplify(m)
		for _, c := range s.OwesYou {
			owesYou = owesYou.Add(c.Amount)
		}
		for _, c := range s.YouOwe {
			youOwe = youOwe.Add(c.Amount)
		}
	}
	assert.True(t, net.IsZero(), "net balances sum to zero, got %s", net)
	assert.True(t, owesYou.Equal(youOwe), "owesYou %s == youOwe %s", owesYou, youOwe)

	transferTotal := decimal.Zero
	for _, e := range got.SuggestedTransfers {
		transferTotal = transferTotal.Add(e.Amount)
	}
	debt := decimal.Zero
	for _, m := range members {
		if got.Members[m].Balance.IsNegative() {
			debt = debt.Add(got.Members[m].Balance.Neg())
		}
	}
	assert.True(t, transferTotal.Equal(debt), "transfers %s clear debts %s", transferTotal, debt)
}

func TestSimplify_NetsOppositeDebts(t *testing.T) {
	txs := []TransactionForBalance{
		evenTx("t1", "100", "A", []string{"A", "B"}, pending("B")),
		evenTx("t2", "30", "B", []string{"A", "B"}, pending("A")),
	}
	got, err := CalculateGroupBalances([]string{"A", "B"}, txs)
	require.NoError(t, err)

	forA := got.Simplify("A")
	assert.Empty(t, forA.YouOwe)
	require.Len(t, forA.OwesYou, 1)
	assert.Equal(t, "B", forA.OwesYou[0].MemberID)
	assertMoney(t, "35", forA.OwesYou[0].Amount)

	forB := got.Simplify("B")
	assert.Empty(t, forB.OwesYou)
	require.Len(t, forB.YouOwe, 1)
	assertMoney(t, "35", forB.YouOwe[0].Amount)

	stranger := got.Simplify("nobody")
	assert.Empty(t, stranger.YouOwe)
	assert.Empty(t, stranger.OwesYou)
}

func TestSimplify_DropsEvenedOutPairs(t *testing.T) {
	txs := []TransactionForBalance{
		evenTx("t1", "40", "A", []string{"A", "B"}, pending("B")),
		evenTx("t2", "40", "B", []string{"A", "B"}, pending("A")),
	}
	got, err := CalculateGroupBalances([]string{"A", "B"}, txs)
	require.NoError(t, err)

	s := got.Simplify("A")
	assert.Empty(t, s.YouOwe)
	assert.Empty(t, s.OwesYou)
	assert.True(t, got.Members["A"].Balance.IsZero())
}
