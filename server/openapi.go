package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
)

const openAPIDocument = `
openapi: 3.0.3
info:
  title: Chatbot Factory API
  version: ` + Version + `
  description: Generates runnable chatbot projects from declarative configurations.
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
      bearerFormat: JWT
  schemas:
    Error:
      type: object
      properties:
        error:
          type: string
    ChatbotConfig:
      type: object
      description: Omitted fields take the factory defaults.
      properties:
        name:
          type: string
        description:
          type: string
        chatbot_type:
          type: string
          enum: [customer_support, sales_assistant, knowledge_base, creative_assistant, technical_support, multi_agent_team]
        personality_traits:
          type: array
          items:
            type: string
            enum: [professional, friendly, casual, formal, humorous, empathetic, direct]
        tone:
          type: string
        language:
          type: string
        domain_expertise:
          type: array
          items:
            type: string
        knowledge_sources:
          type: array
          items:
            type: string
        context_window:
          type: integer
        enable_rag:
          type: boolean
        enable_function_calling:
          type: boolean
        enable_memory:
          type: boolean
        enable_web_search:
          type: boolean
        integrations:
          type: array
          items:
            type: object
            additionalProperties: true
        api_endpoints:
          type: array
          items:
            type: object
            additionalProperties:
              type: string
        is_multi_agent:
          type: boolean
        agents:
          type: array
          items:
            $ref: '#/components/schemas/AgentConfig'
        ui_theme:
          type: string
        custom_css:
          type: string
        logo_url:
          type: string
        enable_docker:
          type: boolean
        port:
          type: integer
        max_conversation_length:
          type: integer
        response_timeout:
          type: integer
        rate_limit:
          type: integer
    AgentConfig:
      type: object
      properties:
        name:
          type: string
        role:
          type: string
          enum: [coordinator, researcher, analyst, writer, reviewer, specialist]
        description:
          type: string
        system_prompt:
          type: string
        tools:
          type: array
          items:
            type: string
        model:
          type: string
        temperature:
          type: number
    GenerationRequest:
      type: object
      required: [config, output_name]
      properties:
        config:
          $ref: '#/components/schemas/ChatbotConfig'
        output_name:
          type: string
        include_tests:
          type: boolean
          default: true
        include_docs:
          type: boolean
          default: true
    GenerationResponse:
      type: object
      properties:
        success:
          type: boolean
        output_path:
          type: string
        message:
          type: string
        files_generated:
          type: array
          items:
            type: string
        docker_image:
          type: string
        errors:
          type: array
          items:
            type: string
    Architecture:
      type: object
      properties:
        type:
          type: string
          enum: [single_agent, multi_agent]
        agents:
          type: array
          items:
            type: object
            additionalProperties: true
        tools:
          type: array
          items:
            type: string
        data_stores:
          type: array
          items:
            type: string
        tech_stack:
          type: object
          additionalProperties:
            type: string
        recommendations:
          type: string
    HistoryRecord:
      type: object
      properties:
        id:
          type: string
        run_id:
          type: string
        name:
          type: string
        type:
          type: string
        success:
          type: boolean
        message:
          type: string
        files_generated:
          type: integer
        output_path:
          type: string
        docker_image:
          type: string
        artifact_prefix:
          type: string
        errors:
          type: array
          items:
            type: string
        duration:
          type: integer
          description: Nanoseconds.
        created_at:
          type: string
          format: date-time
paths:
  /health:
    get:
      operationId: health
      responses:
        '200':
          description: Service is up.
  /generate:
    post:
      operationId: generate
      security:
        - bearerAuth: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/GenerationRequest'
      responses:
        '200':
          description: The run finished; success may still be false.
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/GenerationResponse'
        '400':
          description: Malformed request body.
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
        '503':
          description: The run could not be scheduled.
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Error'
  /preview:
    post:
      operationId: preview
      security:
        - bearerAuth: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/ChatbotConfig'
      responses:
        '200':
          description: Rule-based architecture for the configuration.
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Architecture'
        '501':
          description: Preview is not configured.
  /templates:
    get:
      operationId: templates
      responses:
        '200':
          description: Registered template names and supported chatbot types.
  /history:
    get:
      operationId: history
      security:
        - bearerAuth: []
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            minimum: 1
            maximum: 200
            default: 20
      responses:
        '200':
          description: Recent runs, newest first.
          content:
            application/json:
              schema:
                type: object
                properties:
                  records:
                    type: array
                    items:
                      $ref: '#/components/schemas/HistoryRecord'
        '400':
          description: Invalid limit.
  /ws/generate:
    get:
      operationId: streamGenerate
      description: Websocket. Send one GenerationRequest; receive stage frames and a final result frame.
      security:
        - bearerAuth: []
      responses:
        '101':
          description: Switching protocols.
`

var loadOpenAPI = sync.OnceValues(func() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData([]byte(openAPIDocument))
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi document: %w", err)
	}
	return doc, nil
})

// OpenAPI returns the validated description of the HTTP API
func OpenAPI() (*openapi3.T, error) {
	return loadOpenAPI()
}

func (s *Server) openAPI(c *gin.Context) {
	doc, err := OpenAPI()
	if err != nil {
		s.logger.Error("openapi document unavailable", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "openapi document unavailable"})
		return
	}
	c.JSON(http.StatusOK, doc)
}
