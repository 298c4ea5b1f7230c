package prompts

const defaultTemplate = `I want you to act as a professional SEO copywriter. Based on the following details, generate a list of {count} creative, catchy, and impactful SEO headlines. These headlines should appeal to both customers and search engines. Make them concise, benefit-driven, and relevant to the business type and location.

Business Name: {name}
Type of Business: {type}
Location: {location}
Optional Description: {description}

Your goal is to make a great first impression, improve click-through rates, and highlight what makes this business special. Avoid generic phrases and make each headline sound unique and compelling.

Format your response as a JSON array with exactly {count} headlines:
["headline1", "headline2", "headline3", "headline4", "headline5"]`

const localTemplate = `Generate {count} unique, catchy SEO headlines for a business. Focus strictly on the following details:
Business Name: {name}
Main Type: {mainType}
Subtype: {subType}
Location: {location}
Description: {description}
Return ONLY a JSON array of {count} headlines, no explanation.`

// Builtin returns the prompts every registry starts with.
func Builtin() map[string]string {
	return map[string]string{
		DefaultKey:            defaultTemplate,
		"content_engineering": defaultTemplate,
		"local":               localTemplate,
	}
}
