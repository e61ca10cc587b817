package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
)

// Service sends transactional mail through Resend.
type Service struct {
	client *resend.Client
	from   string
}

func NewService(apiKey, fromAddress string) *Service {
	return &Service{
		client: resend.NewClient(apiKey),
		from:   fromAddress,
	}
}

// SendVerificationCode delivers a 2FA code to the given address.
func (s *Service) SendVerificationCode(ctx context.Context, to, name, code string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: "Tu código de verificación - 2FA",
		Html:    verificationCodeHTML(name, code),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

func verificationCodeHTML(name, code string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f4f4f4; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); color: white; padding: 40px 20px; text-align: center; }
    .content { padding: 40px 20px; text-align: center; }
    .code-box { background-color: #f9f9f9; border: 2px solid #667eea; border-radius: 8px; padding: 30px; margin: 30px 0; }
    .code { font-size: 48px; font-weight: bold; color: #667eea; letter-spacing: 5px; font-family: 'Courier New', monospace; }
    .expiration { font-size: 12px; color: #999; margin-top: 15px; }
    .info { background-color: #f0f7ff; border-left: 4px solid #667eea; padding: 15px; margin: 20px 0; text-align: left; font-size: 13px; color: #333; border-radius: 4px; }
    .footer { background-color: #f4f4f4; padding: 20px; text-align: center; font-size: 12px; color: #999; border-top: 1px solid #ddd; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Verificación de Seguridad</h1>
    </div>
    <div class="content">
      <p style="font-size: 16px; color: #333;">¡Hola <strong>%s</strong>!</p>
      <p style="font-size: 14px; color: #666;">Bienvenido a SnapPlace. Tu código de verificación es:</p>
      <div class="code-box">
        <p>CÓDIGO DE VERIFICACIÓN</p>
        <div class="code">%s</div>
        <div class="expiration">Este código expira en 10 minutos</div>
      </div>
      <div class="info">
        <strong>Información importante:</strong><br>
        • Nunca compartas este código con nadie<br>
        • Nuestro equipo nunca te pedirá este código por mensaje<br>
        • Si no solicitaste este código, ignora este correo
      </div>
    </div>
    <div class="footer">
      <p>Este es un correo automático, por favor no respondas.<br>
      © 2025 SnapPlace. Todos los derechos reservados.</p>
    </div>
  </div>
</body>
</html>`, name, code)
}
