package process_message

// Request входящее сообщение клиента
type Request struct {
	Phone   string
	Message string
}

// Response ответ агента
type Response struct {
	Reply  string
	Intent string
	Stage  string
}
