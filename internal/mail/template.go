package mail

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
	"time"

	"github.com/vrtmanagement/feedback-system/internal/survey/domain"
)

type thankYouData struct {
	FullName      string
	Company       string
	SubmittedAt   string
	QuestionCount int
	Year          int
}

var thankYouHTML = htmltemplate.Must(htmltemplate.New("thankYouHTML").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <style>
    body { font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333; margin: 0; background-color: #f5f5f5; }
    .container { max-width: 600px; margin: 20px auto; background: #ffffff; border-radius: 12px; overflow: hidden; box-shadow: 0 4px 20px rgba(0, 0, 0, 0.08); }
    .header { background: white; color: #dc2626; padding: 30px; text-align: center; border-bottom: 2px solid #f3f4f6; }
    .header h1 { margin: 0; font-size: 28px; font-weight: 700; }
    .content { padding: 40px; background: white; }
    .greeting { font-size: 18px; color: #1f2937; font-weight: 600; }
    .content p { margin: 16px 0; color: #4b5563; font-size: 15px; }
    .details-box { background: #fef2f2; border-left: 5px solid #dc2626; padding: 25px; margin: 28px 0; border-radius: 8px; }
    .details-box p { margin: 0 0 15px 0; font-weight: 700; color: #dc2626; }
    .details-box li { margin: 12px 0; color: #374151; font-size: 14px; }
    .signature { margin-top: 35px; padding-top: 25px; border-top: 2px solid #f3f4f6; color: #6b7280; }
    .signature strong { color: #dc2626; }
    .footer { text-align: center; padding: 30px; background: #f9fafb; color: #6b7280; font-size: 13px; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>Thank You for Your Feedback! &#127881;</h1>
    </div>
    <div class="content">
      <p class="greeting">Hi {{.FullName}},</p>
      <p>Thank you for taking the time to complete our survey! Your feedback is invaluable to us and helps us improve our services to better serve you and your organization.</p>
      <div class="details-box">
        <p>&#128203; Survey Submission Summary</p>
        <ul>
          <li><strong>Submitted:</strong> {{.SubmittedAt}}</li>
          <li><strong>Company:</strong> {{.Company}}</li>
          <li><strong>Questions Answered:</strong> {{.QuestionCount}}</li>
        </ul>
      </div>
      <p>We truly appreciate your participation in the EGA Program survey. Your honest feedback helps us understand what's working well and where we can improve.</p>
      <p>If you have any questions, additional feedback, or would like to discuss your responses further, please don't hesitate to reach out to us anytime.</p>
      <div class="signature">
        <p>Warm regards,</p>
        <p><strong>VRT Management Group Team</strong></p>
      </div>
    </div>
    <div class="footer">
      <p>&copy; {{.Year}} VRT Management Group, LLC. All rights reserved.</p>
      <p>This email was sent because you completed a survey on our platform.</p>
    </div>
  </div>
</body>
</html>
`))

var thankYouText = texttemplate.Must(texttemplate.New("thankYouText").Parse(`Thank You for Your Feedback!

Hi {{.FullName}},

Thank you for taking the time to complete our survey! Your feedback is invaluable to us and helps us improve our services.

Survey Details:
- Submitted: {{.SubmittedAt}}
- Company: {{.Company}}
- Questions Answered: {{.QuestionCount}}

We truly appreciate your participation and will carefully review your responses. Your insights help us serve you better.

If you have any questions or additional feedback, feel free to reach out to us anytime.

Best regards,
VRT Management Group Team

---
(c) {{.Year}} VRT Management Group, LLC. All rights reserved.
This email was sent because you completed a survey on our platform.
`))

// renderThankYou produces the HTML body and its plain-text fallback for a
// submitted survey.
func renderThankYou(survey *domain.Survey) (html string, text string, err error) {
	submitted := time.Now().UTC()
	if survey.SubmittedAt != nil {
		submitted = *survey.SubmittedAt
	}

	data := thankYouData{
		FullName:      survey.FullName,
		Company:       survey.Company,
		SubmittedAt:   submitted.Format("Monday, January 2, 2006 15:04 MST"),
		QuestionCount: len(survey.QuestionsAndAnswers),
		Year:          time.Now().Year(),
	}

	var htmlBuf bytes.Buffer
	if err := thankYouHTML.Execute(&htmlBuf, data); err != nil {
		return "", "", fmt.Errorf("render thank-you html: %w", err)
	}

	var textBuf bytes.Buffer
	if err := thankYouText.Execute(&textBuf, data); err != nil {
		return "", "", fmt.Errorf("render thank-you text: %w", err)
	}

	return htmlBuf.String(), textBuf.String(), nil
}
