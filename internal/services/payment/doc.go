/*
Package payment orchestrates the transaction lifecycle:

	pending    -> processing   (sender confirms)
	pending    -> cancelled    (sender cancels, or the expiry sweep fires)
	processing -> completed    (settlement claim; the winner runs the move)
	processing -> failed       (rail reports failure, or retries exhaust)
	completed  -> failed       (claim rollback when the ledger move fails)
	completed  -> reversed     (chargeback/compliance reversal)

No other transitions exist; every transition is a compare-and-set on the
stored status, so concurrent duplicate confirms, settlement reports and
sweep passes resolve to exactly one winner. The completed -> failed edge is
internal recovery only: the settlement claim is taken before the ledger
move, and a won claim whose move then fails rolls back and returns the
sender's hold.

The orchestrator consults the limit policy and risk scorer, prices the
transaction through the rate resolver and fee calculator, and delegates all
balance movement to the ledger service. It never touches a wallet directly.

Usage:

	svc := payment.NewService(txRepo, walletRepo, ledgerSvc, rateSvc,
	    feeCalc, riskScorer, cache, payment.Config{}, logger)

	tx, err := svc.Initiate(ctx, payment.InitiateRequest{
	    SenderWalletID:    sender.ID,
	    RecipientWalletID: recipient.ID,
	    Amount:            decimal.RequireFromString("100"),
	    CurrencyFrom:      "USD",
	    CurrencyTo:        "USD",
	    Type:              models.TypePeerToPeer,
	    Reference:         clientKey,
	})
	tx, err = svc.Confirm(ctx, tx.TransactionID, sender.ID)

Run the expiry sweep in the background:

	go payment.NewSweeper(svc, time.Minute, logger).Run(ctx)
*/
package payment
