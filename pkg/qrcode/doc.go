// Package qrcode renders payment requests as QR codes.
//
// PaymentRequest builds a SEP-7 "web+stellar:pay" URI for a registered
// session: destination is the merchant, amount is the session minimum in whole
// tokens and the session memo is attached as MEMO_TEXT. A wallet that scans
// the code produces a payment the validator can later match by memo.
//
//	png, err := qrcode.PaymentPNG(qrcode.PaymentRequest{
//		Destination: session.Merchant,
//		Amount:      session.Amount,
//		Memo:        session.Memo,
//	}, 0)
//
// Generate and GenerateDataURI wrap github.com/skip2/go-qrcode for arbitrary
// content. A size <= 0 selects DefaultSize.
package qrcode
