package codegen

import "github.com/sweetpotato0/chatbot-factory/prompt"

// Template names for the generated project files
const (
	TemplateMainPy       = "main_py"
	TemplateRequirements = "requirements_txt"
	TemplateReadme       = "readme_md"
	TemplateEnvExample   = "env_example"
	TemplateIndexHTML    = "index_html"
	TemplateDockerfile   = "dockerfile"
)

const mainPyTemplate = `# {{.Name}} - generated by Chatbot Factory
import os
from typing import List, Tuple

import gradio as gr
import uvicorn
import yaml
from dotenv import load_dotenv
from fastapi import FastAPI
from fastapi.staticfiles import StaticFiles
from pydantic import BaseModel
{{- if eq .Provider "openai"}}
from langchain_openai import ChatOpenAI
{{- else if eq .Provider "claude"}}
from langchain_anthropic import ChatAnthropic
{{- else if eq .Provider "gemini"}}
from langchain_google_genai import ChatGoogleGenerativeAI
{{- else if eq .Provider "cohere"}}
from langchain_cohere import ChatCohere
{{- else}}
from langchain_groq import ChatGroq
{{- end}}
from langchain_core.messages import AIMessage, HumanMessage, SystemMessage

load_dotenv()

with open(os.path.join(os.path.dirname(__file__), "config.yaml")) as fh:
    CONFIG = yaml.safe_load(fh)

SYSTEM_PROMPT = {{quote .SystemPrompt}}

MAX_HISTORY = {{.MaxConversationLength}}


class {{.ClassName}}:
    """Conversational agent ({{.ArchitectureType}})"""

    def __init__(self):
{{- if eq .Provider "openai"}}
        self.llm = ChatOpenAI(api_key=os.getenv("{{.CredentialName}}"), model="{{.Model}}", temperature={{.Temperature}}, timeout={{.ResponseTimeout}})
{{- else if eq .Provider "claude"}}
        self.llm = ChatAnthropic(api_key=os.getenv("{{.CredentialName}}"), model="{{.Model}}", temperature={{.Temperature}}, timeout={{.ResponseTimeout}})
{{- else if eq .Provider "gemini"}}
        self.llm = ChatGoogleGenerativeAI(google_api_key=os.getenv("{{.CredentialName}}"), model="{{.Model}}", temperature={{.Temperature}})
{{- else if eq .Provider "cohere"}}
        self.llm = ChatCohere(cohere_api_key=os.getenv("{{.CredentialName}}"), model="{{.Model}}", temperature={{.Temperature}})
{{- else}}
        self.llm = ChatGroq(groq_api_key=os.getenv("{{.CredentialName}}"), model_name="{{.Model}}", temperature={{.Temperature}})
{{- end}}
        self.memory = {}

    async def chat(self, message: str, history: List[Tuple[str, str]], user_id: str = "default") -> str:
        if not message or not message.strip():
            return "Please send a message so I can help you."

        messages = [SystemMessage(content=SYSTEM_PROMPT)]
{{- if .EnableMemory}}
        past = self.memory.setdefault(user_id, [])
        messages.extend(past[-MAX_HISTORY:])
{{- end}}
        for human, ai in history[-MAX_HISTORY:]:
            messages.append(HumanMessage(content=human))
            messages.append(AIMessage(content=ai))
        messages.append(HumanMessage(content=message))

        try:
            response = await self.llm.ainvoke(messages)
        except Exception as exc:  # noqa: BLE001
            return f"Sorry, something went wrong: {exc}"
{{- if .EnableMemory}}
        past.append(HumanMessage(content=message))
        past.append(AIMessage(content=response.content))
{{- end}}
        return response.content


bot = {{.ClassName}}()
api = FastAPI(title={{quote .Name}})


class ChatRequest(BaseModel):
    message: str
    user_id: str = "default"


@api.post("/chat")
async def chat_endpoint(request: ChatRequest):
    return {"response": await bot.chat(request.message, [], request.user_id)}


@api.get("/health")
async def health():
    return {"status": "healthy"}


async def respond(message, history):
    return await bot.chat(message, history)


demo = gr.ChatInterface(fn=respond, title={{quote .Name}}, description={{quote .Description}})
api.mount("/static", StaticFiles(directory=os.path.join(os.path.dirname(__file__), "ui")), name="static")
app = gr.mount_gradio_app(api, demo, path="/")

if __name__ == "__main__":
    uvicorn.run(app, host="0.0.0.0", port={{.Port}})
`

const requirementsTemplate = `fastapi>=0.110.0
uvicorn>=0.29.0
gradio>=4.20.0
pydantic>=2.6.0
python-dotenv>=1.0.0
pyyaml>=6.0
langchain-core>=0.2.0
{{- if eq .Provider "openai"}}
langchain-openai>=0.1.0
{{- else if eq .Provider "claude"}}
langchain-anthropic>=0.1.0
{{- else if eq .Provider "gemini"}}
langchain-google-genai>=1.0.0
{{- else if eq .Provider "cohere"}}
langchain-cohere>=0.1.0
{{- else}}
langchain-groq>=0.1.0
{{- end}}
{{- if .EnableRAG}}
chromadb>=0.4.0
{{- end}}
{{- if .IsMultiAgent}}
langgraph>=0.1.0
{{- end}}
pytest>=8.0.0
pytest-asyncio>=0.23.0
`

const readmeTemplate = "# {{.Name}}\n" +
	"\n" +
	"{{.Description}}\n" +
	"\n" +
	"- Type: {{.Type}}\n" +
	"- Architecture: {{.ArchitectureType}}\n" +
	"- Personality: {{join .Personality \", \"}}\n" +
	"\n" +
	"## Running locally\n" +
	"\n" +
	"```bash\n" +
	"pip install -r requirements.txt\n" +
	"cp .env.example .env  # then set {{.CredentialName}}\n" +
	"python main.py\n" +
	"```\n" +
	"\n" +
	"The chat UI is served on http://localhost:{{.Port}}/ and the API on `POST /chat`.\n" +
	"{{if .EnableDocker}}\n" +
	"## Docker\n" +
	"\n" +
	"```bash\n" +
	"docker-compose up -d\n" +
	"```\n" +
	"{{end}}" +
	"{{if .Agents}}\n" +
	"## Agents\n" +
	"\n" +
	"{{range .Agents}}- **{{.Name}}** ({{.Role}}): {{.Description}}\n{{end}}" +
	"{{end}}" +
	"{{if .Recommendations}}\n" +
	"## Architecture notes\n" +
	"\n" +
	"{{.Recommendations}}\n" +
	"{{end}}"

const envExampleTemplate = `{{.CredentialName}}=
LOG_LEVEL=info
PORT={{.Port}}
`

const indexHTMLTemplate = `<!DOCTYPE html>
<html lang="{{.Language}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
{{.CSS}}
</style>
</head>
<body class="theme-{{.Theme}}">
{{.Logo}}
<h1>{{.Title}}</h1>
<div class="description">{{.Description}}</div>
<p><a href="/">Open the chat</a></p>
</body>
</html>
`

const dockerfileTemplate = `FROM python:3.11-slim

WORKDIR /app

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

EXPOSE {{.Port}}

CMD ["python", "main.py"]
`

// RegisterTemplates adds the project file templates to m
func RegisterTemplates(m *prompt.Manager) error {
	for name, content := range map[string]string{
		TemplateMainPy:       mainPyTemplate,
		TemplateRequirements: requirementsTemplate,
		TemplateReadme:       readmeTemplate,
		TemplateEnvExample:   envExampleTemplate,
		TemplateIndexHTML:    indexHTMLTemplate,
		TemplateDockerfile:   dockerfileTemplate,
	} {
		if err := m.RegisterString(name, content); err != nil {
			return err
		}
	}
	return nil
}
