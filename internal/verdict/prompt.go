// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package verdict

import (
	"bytes"
	"encoding/json"
	"text/template"

	"github.com/pdiddy/smishguard/pkg/types"
)

// detectionPromptTmpl is the classification policy followed by the
// compiled evidence transcript.
var detectionPromptTmpl = template.Must(template.New("detection").Parse(`I want you to act as a spam detector to determine whether a given SMS is phishing, spam, or legitimate. Your analysis should be thorough and evidence-based. Analyze the SMS by following these steps:
1. If the SMS is promoting any of the following categories: online gambling, bets, spins, adult content, digital currency, lottery, it is either spam or phishing.
2. The SMS is legitimate if it is from known organizations, such as appointment reminders, OTP (One-Time Password) verification, delivery notifications, account updates, tracking information, or other expected messages.
3. The SMS is legitimate if it is a conversation between friends, family members, or colleagues.
4. Promotions and advertisements are spam. The SMS is spam if it is a promotion from a legitimate company that is not impersonating any brand: advertisements, app download promotions, sales promotions, donation requests, event promotions, online loan services, or other irrelevant information.
5. The SMS is phishing if it is fraudulent and attempts to deceive recipients into providing sensitive information or clicking malicious links. Phishing SMS may exhibit the following characteristics:
Promotions or Rewards: fake prizes, rewards, or other incentives to lure recipients into clicking links or providing personal information.
Urgent or Alarming Language: a sense of urgency or fear, such as threats of account suspension, missed payments, or urgent security alerts.
Suspicious Links: links to fake websites designed to steal personal information.
Requests for Personal Information: passwords, credit card numbers, social security numbers, or other personal details.
Grammatical and Spelling Errors: grammatical mistakes or unusual wording.
Expired Domain: phishing websites often use domains that expire quickly or are already listed for sale.
Inconsistency: the URL may be irrelevant to the message content.
6. Be aware that shortened URLs are common in SMS. You can get the expanded URL from the provided redirect chain. Both phishing and legitimate URLs can be shortened, and both phishing and legitimate websites may show a robot-human verification page (CAPTCHA-like mechanism) before granting access to the content.
7. I will provide you with some external information if there is a URL in the SMS. The information includes:
- Redirect Chain: the URL may redirect through multiple intermediate links before reaching the final destination; if any of them is flagged as phishing, the original URL becomes suspicious.
- Brand Search Information: the top five results from a Google search of the brand name. You can compare whether the URL's domain matches the results from Google.
- Screenshot Description: a description of the website's screenshot, highlighting any notable visual elements.
- HTML Content Summary: the title of the HTML page and a summary of its content.
- Domain Information: the domain registration details, including registrar, creation date, and DNS records, which help verify the domain's legitimacy.
8. Give your rationales before making a decision. Your output should be in JSON format and should not have any other output:
- brand_impersonated: brand name associated with the SMS, if applicable.
- URL: any URL that appears in the SMS; if there is no URL, answer "none".
- rationales: detailed rationales for the determination, up to 500 words. Give sentences directly, do not categorize the rationales. Only tell the reasons why the SMS is legitimate or not.
- brief_reason: brief reason for the determination.
- category: true or false. If the SMS is legitimate, output false. Otherwise, output true.
- advice: if the SMS is phishing, output the potential risk and your advice for the recipient, such as "Do not respond to this message or access the link."

Below is the information of the SMS:
{{.Transcript}}`))

// explanationPromptTmpl asks for a short plain-language account of a verdict.
var explanationPromptTmpl = template.Must(template.New("explanation").Parse(`Based on the detailed analysis, create a simple and easy-to-understand response that tells the user whether the text message is a phishing attempt or a legitimate message. Use plain language and avoid technical terms like URL or HTTP headers. Explain your conclusion in at most 3 sentences, focusing on whether the message seems suspicious or safe. Give a simple reason for your conclusion that names one clear piece of evidence, such as a suspicious website link or an urgent tone in the message. The response should be reassuring, concise, and easy for anyone to understand.
The SMS message: {{.SMS}}
The analysis result: {{.Result}}`))

// Prompt embeds a compiled evidence transcript into the detection policy.
func Prompt(transcript string) string {
	var buf bytes.Buffer
	// Execute cannot fail on a string field.
	_ = detectionPromptTmpl.Execute(&buf, struct{ Transcript string }{transcript})
	return buf.String()
}

func explanationPrompt(sms string, v types.Verdict) (string, error) {
	result, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = explanationPromptTmpl.Execute(&buf, struct {
		SMS    string
		Result string
	}{SMS: sms, Result: string(result)})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
