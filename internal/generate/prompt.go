package generate

import "fmt"

// SystemInstruction is sent with every candidate request.
const SystemInstruction = "Especialista em AutoLISP para AutoCAD. Gere análises técnicas objetivas e código LISP puro compatível com Windows, Mac, ZWCAD e BricsCAD."

// promptTemplate asks for a short plain-text analysis followed by a
// portable AutoLISP script, separated by the section markers the
// extractor looks for. The only placeholder is the user's request.
const promptTemplate = `Necessidade: "%s"

Primeiro, forneça uma análise técnica resumida (máximo 300 palavras) com:
- Estratégia de implementação
- Códigos DXF necessários (ex: 10, 11, 40)
- Fluxo lógico principal

Use texto puro, sem markdown. Organize com números e letras (1., 2., a), b), etc.).

Depois, forneça o código AutoLISP completo seguindo:

Requisitos de compatibilidade:
1. Use LISP puro. Evite funções 'vla-' ou 'vlax-' (ActiveX) para funcionar no AutoCAD Mac, ZWCAD e BricsCAD.
2. Para UNDO, use (command "_.UNDO" "_BEGIN") no início e (command "_.UNDO" "_END") no fim e no tratamento de erro.
3. Para criar ou modificar entidades, prefira 'entmake' ou 'command'.
4. Adicione cabeçalho: ;;; COMMAND: NOME_DO_COMANDO.
5. Localize todas as variáveis no (defun C:NOME (/ var1 var2 ...)).
6. Tratamento de erro via (defun *error* (msg) ...).

Formato:
Comece com "=== ANÁLISE ===" seguida da análise.
Depois "=== CÓDIGO ===" seguido do código AutoLISP completo.
Código pronto para uso, sem blocos de markdown.`

// BuildPrompt embeds the user's request in the fixed instruction template.
// The text is inserted verbatim; it is never parsed.
func BuildPrompt(userText string) string {
	return fmt.Sprintf(promptTemplate, userText)
}
