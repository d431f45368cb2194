// Package ofx reads OFX and QFX bank and card statements into spending
// transactions that can be summarized into behavior features.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/Veraticus/spend-sense/internal/model"
	"github.com/aclindsa/ofxgo"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	// An SGML opening tag alone on its line with the closing bracket missing.
	unclosedTagPattern = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefixPattern  = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

var genericDescriptions = map[string]bool{
	"DEBIT":           true,
	"CREDIT":          true,
	"PURCHASE":        true,
	"PAYMENT":         true,
	"POS TRANSACTION": true,
	"CARD PURCHASE":   true,
}

// Statement is the spending found in one statement file.
type Statement struct {
	Accounts []string
	Spending []model.Transaction
	Inflows  int
}

// Parser converts OFX statements. It holds no state and is safe for reuse.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse reads one statement. Only outflows are kept as spending; deposits,
// refunds and other inflows are counted and dropped.
func (p *Parser) Parse(ctx context.Context, reader io.Reader) (*Statement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(clean(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	accounts := make(map[string]bool)

	for _, msg := range resp.Bank {
		bank, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		acct := string(bank.BankAcctFrom.AcctID)
		accounts[acct] = true
		stmt.collect(acct, bank.BankTranList)
	}

	for _, msg := range resp.CreditCard {
		card, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		acct := string(card.CCAcctFrom.AcctID)
		accounts[acct] = true
		stmt.collect(acct, card.BankTranList)
	}

	for acct := range accounts {
		if acct != "" {
			stmt.Accounts = append(stmt.Accounts, acct)
		}
	}
	sort.Strings(stmt.Accounts)

	slog.Debug("Parsed OFX statement",
		"accounts", len(stmt.Accounts),
		"spending", len(stmt.Spending),
		"inflows", stmt.Inflows)

	return stmt, nil
}

func (s *Statement) collect(accountID string, list *ofxgo.TransactionList) {
	if list == nil {
		return
	}
	for _, ofxTx := range list.Transactions {
		amount, _ := ofxTx.TrnAmt.Float64()
		if amount >= 0 {
			s.Inflows++
			continue
		}

		tx := model.Transaction{
			ID:           string(ofxTx.FiTID),
			Date:         ofxTx.DtPosted.Time,
			Name:         strings.TrimSpace(string(ofxTx.Name)),
			MerchantName: merchantName(ofxTx),
			Amount:       -amount,
			AccountID:    accountID,
			Type:         ofxTx.TrnType.String(),
		}
		tx.Hash = tx.GenerateHash()
		s.Spending = append(s.Spending, tx)
	}
}

// clean repairs formatting quirks that ofxgo rejects.
func clean(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return unclosedTagPattern.ReplaceAllString(content, "$1>")
}

// merchantName prefers the payee, then a non-generic name or memo, with
// card-network prefixes and leading MM/DD dates removed.
func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && genericDescriptions[strings.ToUpper(name)] {
		name = strings.TrimSpace(string(tx.Memo))
	}
	return cleanDescription(name)
}

func cleanDescription(name string) string {
	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}
	return strings.TrimSpace(datePrefixPattern.ReplaceAllString(name, ""))
}

// Filter keeps transactions whose merchant or raw name matches pattern.
// A nil pattern keeps everything.
func Filter(txns []model.Transaction, pattern *regexp.Regexp) []model.Transaction {
	if pattern == nil {
		return txns
	}
	kept := make([]model.Transaction, 0, len(txns))
	for _, tx := range txns {
		if pattern.MatchString(tx.MerchantName) || pattern.MatchString(tx.Name) {
			kept = append(kept, tx)
		}
	}
	return kept
}

// Dedupe drops transactions whose hash was already seen, keeping the first.
// Overlapping statement downloads repeat the same rows.
func Dedupe(txns []model.Transaction) []model.Transaction {
	seen := make(map[string]bool, len(txns))
	kept := make([]model.Transaction, 0, len(txns))
	for _, tx := range txns {
		if seen[tx.Hash] {
			continue
		}
		seen[tx.Hash] = true
		kept = append(kept, tx)
	}
	return kept
}
