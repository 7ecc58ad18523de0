package email

import (
	"fmt"

	"github.com/ErlynFabian/WearShop-sub000/internal/domain/sale"
)

// BuildSaleConfirmationBody builds the HTML body for a sale confirmation.
func BuildSaleConfirmationBody(s sale.Sale) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: #1a1a2e; padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">Thank you for your order</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">Hi %s, we've received your order and will be in touch shortly.</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order reference</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<tr style="background: #f8f9fa;">
				<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
				<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
				<th style="padding: 12px; text-align: right; font-weight: 600;">Unit</th>
				<th style="padding: 12px; text-align: right; font-weight: 600;">Total</th>
			</tr>
			<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">&#8369;%.2f</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">&#8369;%.2f</td>
			</tr>
		</table>

		<p style="font-size: 13px; color: #999; margin-bottom: 0;">WearShop &mdash; this is an automated message, please do not reply.</p>
	</div>
</body>
</html>`,
		customerFirstName(s),
		s.ID,
		s.ProductName,
		s.Quantity,
		s.Price,
		s.Total,
	)
}

func customerFirstName(s sale.Sale) string {
	name := s.CustomerName
	for i, r := range name {
		if r == ' ' {
			return name[:i]
		}
	}
	if name == "" {
		return "there"
	}
	return name
}
