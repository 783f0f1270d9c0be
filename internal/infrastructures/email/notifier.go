package email

import (
	"context"
	"fmt"

	"github.com/ozzus/cocoplanner/internal/domain/models"
)

// PlanNotifier renders the results email and hands it to a Sender.
type PlanNotifier struct {
	sender    Sender
	templates *TemplateManager
}

func NewPlanNotifier(sender Sender, templates *TemplateManager) *PlanNotifier {
	return &PlanNotifier{sender: sender, templates: templates}
}

func (n *PlanNotifier) SendPlan(ctx context.Context, email models.PlanEmail) error {
	rendered, err := n.templates.RenderPlan(email)
	if err != nil {
		return fmt.Errorf("render plan email: %w", err)
	}
	return n.sender.SendEmail(ctx, email.To, rendered.Subject, rendered.Text, rendered.HTML)
}
