package notifications

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/phoolcraft/phool-backend/pkg/config"
	"github.com/phoolcraft/phool-backend/pkg/db/models"
)

// ChannelEmail labels EmailJS deliveries in logs and metrics.
const ChannelEmail = "emailjs"

// EmailJSClient sends templated mail through the EmailJS REST API.
type EmailJSClient struct {
	cfg  config.EmailJSConfig
	http *http.Client
}

// NewEmailJSClient returns nil when EmailJS is not configured.
func NewEmailJSClient(cfg config.EmailJSConfig, client *http.Client) *EmailJSClient {
	if !cfg.Enabled() {
		return nil
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &EmailJSClient{cfg: cfg, http: client}
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send delivers the template with params.
func (c *EmailJSClient) Send(ctx context.Context, params map[string]string) error {
	return postJSON(ctx, c.http, ChannelEmail, c.cfg.Endpoint, emailJSRequest{
		ServiceID:      c.cfg.ServiceID,
		TemplateID:     c.cfg.TemplateID,
		UserID:         c.cfg.PublicKey,
		TemplateParams: params,
	})
}

// ConfirmationParams are the template variables of the order confirmation.
func ConfirmationParams(order models.Order) map[string]string {
	lines := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		line := item.Name + " x" + strconv.Itoa(item.Quantity) + " (PKR " + strconv.FormatInt(item.Price, 10) + ")"
		if item.CustomText != "" {
			line += ` "` + item.CustomText + `"`
		}
		lines = append(lines, line)
	}
	products := strings.Join(lines, "\n")
	if products == "" {
		products = order.Products
	}
	return map[string]string{
		"order_id":       order.OrderID,
		"order_type":     order.OrderType.String(),
		"status":         order.Status.String(),
		"to_name":        order.Name,
		"to_email":       order.Email,
		"phone":          order.Phone,
		"address":        order.Address,
		"products":       products,
		"quantity":       order.Quantity,
		"payment_method": order.PaymentMethod,
		"notes":          order.Notes,
		"subtotal":       strconv.FormatInt(order.Subtotal, 10),
		"discount":       strconv.FormatInt(order.Discount, 10),
		"gift_wrap_cost": strconv.FormatInt(order.GiftWrapCost, 10),
		"total":          strconv.FormatInt(order.Total, 10),
		"gift_message":   order.GiftMessage,
	}
}
