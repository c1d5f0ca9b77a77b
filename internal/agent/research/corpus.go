package research

import "strings"

// Paper is one academic result, from the corpus or the live backend.
type Paper struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Citation string `json:"citation"`
	URL      string `json:"url"`
}

// corpus is the built-in academic dataset used when no arXiv backend is
// configured. Keywords ride along so simple complaint vocabulary matches.
var corpus = []struct {
	Paper
	keywords string
}{
	{
		Paper: Paper{
			Title:    "The Psychology of Service Recovery: Empathy and Customer Satisfaction",
			Abstract: "Empathetic responses to service failures increase customer satisfaction by 40% and reduce churn by 15%. Acknowledging the customer's emotional state before proposing a remedy is the single strongest predictor of recovery success.",
			Citation: "Smith, J. et al. (2023). arXiv:2023.12345",
			URL:      "https://arxiv.org/abs/2023.12345",
		},
		keywords: "empathy apology service recovery complaint frustration refund",
	},
	{
		Paper: Paper{
			Title:    "Proactive Remediation in Consumer Electronics Support",
			Abstract: "Offering a concrete remedy (replacement, credit, expedited handling) before the customer asks cuts escalation rates roughly in half across hardware-defect complaints.",
			Citation: "Nakamura, K. & Ortiz, P. (2024). arXiv:2024.04821",
			URL:      "https://arxiv.org/abs/2024.04821",
		},
		keywords: "replacement defect warranty charging battery device hardware remedy",
	},
	{
		Paper: Paper{
			Title:    "Language Markers of De-escalation in Written Support Channels",
			Abstract: "First-person ownership statements and specific next-step commitments outperform generic apologies in written complaint handling, measured by follow-up sentiment.",
			Citation: "Weiss, A. (2022). arXiv:2022.09917",
			URL:      "https://arxiv.org/abs/2022.09917",
		},
		keywords: "tone de-escalation ridiculous unacceptable angry terrible written response",
	},
	{
		Paper: Paper{
			Title:    "Return Policy Exceptions and Long-Term Customer Value",
			Abstract: "Granting one-time return or warranty exceptions for borderline cases yields positive expected lifetime value in 78% of modeled scenarios.",
			Citation: "Deng, R. et al. (2023). arXiv:2023.07710",
			URL:      "https://arxiv.org/abs/2023.07710",
		},
		keywords: "return eligibility policy exception shipping refund exchange",
	},
}

// corpusSearch does a keyword match over the built-in dataset, falling back
// to the leading entries when nothing matches so the payload is never empty.
func corpusSearch(query string, max int) []Paper {
	q := strings.ToLower(query)
	terms := strings.Fields(q)

	var matched []Paper
	for _, c := range corpus {
		hay := strings.ToLower(c.Title + " " + c.Abstract + " " + c.keywords)
		for _, t := range terms {
			if strings.Contains(hay, t) {
				matched = append(matched, c.Paper)
				break
			}
		}
		if len(matched) >= max {
			return matched
		}
	}

	if len(matched) == 0 {
		for _, c := range corpus {
			matched = append(matched, c.Paper)
			if len(matched) >= max {
				break
			}
		}
	}
	return matched
}
