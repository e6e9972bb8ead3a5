package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"app/internal/config"

	"github.com/rs/zerolog/log"
)

const zohoTokenURL = "https://accounts.zoho.com/oauth/v2/token"

// Zoho Mail APIで送り、トークン取得やAPI呼び出しに失敗したらSMTPへフォールバックする。
type ZohoMailer struct {
	cfg  config.Config
	http *http.Client
}

func NewZohoMailer(cfg config.Config) *ZohoMailer {
	return &ZohoMailer{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

func (m *ZohoMailer) Send(ctx context.Context, to string, subject string, htmlBody string) error {
	if err := m.sendViaZoho(ctx, to, subject, htmlBody); err != nil {
		log.Warn().Err(err).Str("to", to).Msg("zoho mail failed, falling back to smtp")
		return m.sendViaSMTP(to, subject, htmlBody)
	}
	return nil
}

// OAuthのrefresh tokenからアクセストークンを取る
func (m *ZohoMailer) accessToken(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("refresh_token", m.cfg.ZohoRefreshToken)
	form.Set("client_id", m.cfg.ZohoClientID)
	form.Set("client_secret", m.cfg.ZohoClientSecret)
	form.Set("grant_type", "refresh_token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, zohoTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("zoho: empty access token")
	}
	return out.AccessToken, nil
}

func (m *ZohoMailer) sendViaZoho(ctx context.Context, to string, subject string, htmlBody string) error {
	token, err := m.accessToken(ctx)
	if err != nil {
		return err
	}

	payload := map[string]interface{}{
		"fromAddress": m.cfg.ZohoFromAddress,
		"toAddress":   to,
		"subject":     subject,
		"content":     htmlBody,
		"mailFormat":  "html",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	endpoint := m.cfg.ZohoAPIBase + m.cfg.ZohoAccountID + "/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("zoho: status %d", resp.StatusCode)
	}
	return nil
}

func (m *ZohoMailer) sendViaSMTP(to string, subject string, htmlBody string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPassword, m.cfg.SMTPHost)

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.EmailFromName, m.cfg.SMTPUser)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	return smtp.SendMail(addr, auth, m.cfg.SMTPUser, []string{to}, msg.Bytes())
}
