// Package email delivers transactional mail.
//
// Three senders implement EmailSender and are chosen by Config.Provider:
//
//   - "postmark" sends through the Postmark API.
//   - "smtp" dials an SMTP relay with gomail.
//   - "dev" writes each message as an .html file under Config.DevDir, which
//     is handy for following verification links locally.
//
// # Usage
//
//	sender, err := email.NewFromConfig(cfg)
//	if err != nil {
//		return err
//	}
//
//	body, err := templates.Render(ctx, templates.Verification(appName, u.Username, link, ttl))
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   u.Email,
//		Subject:  "Verify your email",
//		BodyHTML: body,
//		Tag:      "verification",
//	})
//
// SendEmailParams.Validate runs before any network call, so malformed
// recipients and empty bodies fail fast with ErrInvalidParams. The message
// bodies live in the templates subpackage.
package email
