package chatbot

import "strings"

const imageSuffix = "-chatbot"

// ImageName derives the container image name for a chatbot:
// lower-cased, spaces replaced with hyphens, suffixed with "-chatbot".
func ImageName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-") + imageSuffix
}

// ImageReference combines a registry host, an image name and a tag.
func ImageReference(registry, image, tag string) string {
	return registry + "/" + image + ":" + tag
}

// ClassName derives the generated bot class name, e.g. "Help Bot" -> "HelpBotBot".
func ClassName(name string) string {
	stripped := strings.NewReplacer(" ", "", "-", "").Replace(name)
	return stripped + "Bot"
}
