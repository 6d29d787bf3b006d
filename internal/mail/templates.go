package mail

import (
	"bytes"
	"html/template"
	"time"
)

const verificationSubject = "Verificación de Cuenta - JAPAMA"

var linkTemplate = template.Must(template.New("link").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 560px; margin: 0 auto; padding: 16px;">
    <h2>Junta de Agua Potable y Alcantarillado del Municipio de Ahome</h2>
    <p>Hola {{.Name}},</p>
    <p>Se creó una cuenta para ti en el sistema de la JAPAMA. Para activarla, verifica tu correo:</p>
    <p><a href="{{.Link}}" style="background:#0b5394;color:#fff;padding:10px 18px;text-decoration:none;border-radius:4px;">Verificar correo</a></p>
    <p>Si el botón no funciona, copia este enlace en tu navegador:</p>
    <p style="word-break: break-all;">{{.Link}}</p>
    <p>El enlace vence en {{.Hours}} horas.</p>
  </div>
</body>
</html>`))

var codeTemplate = template.Must(template.New("code").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif;">
  <div style="max-width: 560px; margin: 0 auto; padding: 16px;">
    <h2>Junta de Agua Potable y Alcantarillado del Municipio de Ahome</h2>
    <p>Hola {{.Name}},</p>
    <p>Tu código de verificación es:</p>
    <div style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</div>
    <p>El código vence en {{.Minutes}} minutos.</p>
  </div>
</body>
</html>`))

// VerificationLinkMessage monta o e-mail com o link de verificação.
func VerificationLinkMessage(to, name, link string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := linkTemplate.Execute(&buf, map[string]any{
		"Name":  name,
		"Link":  link,
		"Hours": int(ttl.Hours()),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: verificationSubject, HTML: buf.String()}, nil
}

// VerificationCodeMessage monta o e-mail com o código de 6 dígitos.
func VerificationCodeMessage(to, name, code string, ttl time.Duration) (Message, error) {
	var buf bytes.Buffer
	err := codeTemplate.Execute(&buf, map[string]any{
		"Name":    name,
		"Code":    code,
		"Minutes": int(ttl.Minutes()),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{To: to, Subject: verificationSubject, HTML: buf.String()}, nil
}
