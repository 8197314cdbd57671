package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// NotifierService 降級告警
// 統計端點連續掛掉達到門檻時，往 Webhook 丟一則訊息通知值班的人
// 不是給使用者看的；UI 永遠拿得到 (可能是舊的) 數據
type NotifierService struct {
	WebhookURL string

	mu           sync.Mutex
	lastSentTime time.Time
}

// WebhookPayload 通用的訊息格式 (相容 Slack/Teams/Discord)
type WebhookPayload struct {
	Text string `json:"text"`
}

func NewNotifierService(webhookURL string) *NotifierService {
	return &NotifierService{WebhookURL: webhookURL}
}

// NotifyDegraded 發送降級告警
// 24 小時內不重複發，避免半夜轟炸
func (n *NotifierService) NotifyDegraded(failures int, lastErr error) {
	if n.WebhookURL == "" {
		return // 沒設定就不發
	}

	n.mu.Lock()
	if time.Since(n.lastSentTime) < 24*time.Hour {
		n.mu.Unlock()
		return
	}
	n.lastSentTime = time.Now()
	n.mu.Unlock()

	msg := fmt.Sprintf("⚠️ [儀表板降級] 統計端點連續失敗 %d 次，目前供應快取數據。最後錯誤: %v",
		failures, lastErr)

	logrus.Infof("正在發送降級告警 (連續失敗 %d 次)", failures)
	if err := n.send(msg); err != nil {
		logrus.Errorf("發送降級告警失敗: %v", err)
	}
}

// SendTestMessage 發送測試訊息
func (n *NotifierService) SendTestMessage(webhookURL string) error {
	payload := WebhookPayload{Text: "🔔 這是一條來自 Report Dashboard 的測試告警訊息！"}
	return postJSON(webhookURL, payload)
}

func (n *NotifierService) send(message string) error {
	return postJSON(n.WebhookURL, WebhookPayload{Text: message})
}

// 底層發送邏輯
func postJSON(url string, payload WebhookPayload) error {
	jsonBytes, _ := json.Marshal(payload)

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook 回應錯誤代碼: %d", resp.StatusCode)
	}
	return nil
}
