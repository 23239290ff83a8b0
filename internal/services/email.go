package services

import (
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	Client *resend.Client
	From   string
}

func NewEmailService() *EmailService {
	apiKey := os.Getenv("RESEND_API_KEY")
	fromEmail := os.Getenv("FROM_EMAIL")

	if apiKey == "" {
		log.Printf("⚠️  WARNING: RESEND_API_KEY is empty!")
	}
	if fromEmail == "" {
		log.Printf("⚠️  WARNING: FROM_EMAIL is empty!")
		fromEmail = "onboarding@resend.dev" // Resend's default test email
	}

	client := resend.NewClient(apiKey)

	return &EmailService{
		Client: client,
		From:   fromEmail,
	}
}

// GenerateOTP generates a 6-digit OTP
func GenerateOTP() (string, error) {
	max := big.NewInt(1000000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// SendOTPEmail sends OTP via email using Resend
func (es *EmailService) SendOTPEmail(to, otp, purpose string) error {
	subject := "Votre code de vérification"
	var htmlBody string

	if purpose == "signup" {
		subject = "Bienvenue sur FasoLink — Vérifiez votre email"
		htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .otp-box { background-color: #f4f4f4; border: 2px dashed #e67e22; padding: 20px; text-align: center; margin: 20px 0; border-radius: 5px; }
        .otp-code { font-size: 32px; font-weight: bold; color: #e67e22; letter-spacing: 5px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Bienvenue sur FasoLink !</h2>
        <p>Merci pour votre inscription. Utilisez ce code pour vérifier votre adresse email :</p>
        <div class="otp-box">
            <div class="otp-code">%s</div>
        </div>
        <p>Ce code expire dans <strong>10 minutes</strong>.</p>
        <p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email.</p>
        <div class="footer">
            <p>Message automatique, merci de ne pas répondre.</p>
        </div>
    </div>
</body>
</html>
        `, otp)
	} else {
		subject = "FasoLink — Réinitialisation du mot de passe"
		htmlBody = fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .otp-box { background-color: #f4f4f4; border: 2px dashed #c0392b; padding: 20px; text-align: center; margin: 20px 0; border-radius: 5px; }
        .otp-code { font-size: 32px; font-weight: bold; color: #c0392b; letter-spacing: 5px; }
        .footer { margin-top: 30px; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Réinitialisation du mot de passe</h2>
        <p>Nous avons reçu une demande de réinitialisation de votre mot de passe FasoLink. Utilisez ce code :</p>
        <div class="otp-box">
            <div class="otp-code">%s</div>
        </div>
        <p>Ce code expire dans <strong>10 minutes</strong>.</p>
        <p>Si vous n'êtes pas à l'origine de cette demande, ignorez cet email ; votre mot de passe restera inchangé.</p>
        <div class="footer">
            <p>Message automatique, merci de ne pas répondre.</p>
        </div>
    </div>
</body>
</html>
        `, otp)
	}

	params := &resend.SendEmailRequest{
		From:    es.From,
		To:      []string{to},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := es.Client.Emails.Send(params)
	if err != nil {
		log.Printf("❌ Resend API Error: %v", err)
		return fmt.Errorf("failed to send email: %v", err)
	}

	log.Printf("✅ Email sent successfully to: %s (ID: %s)", to, sent.Id)
	return nil
}
