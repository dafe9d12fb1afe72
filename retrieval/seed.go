package retrieval

// SeedDocuments returns the built-in football knowledge base.
func SeedDocuments() []Document {
	docs := []struct {
		character, topic, content string
	}{
		{"maradona", "biography", "Diego Maradona was an Argentine professional footballer widely regarded as one of the greatest players in the history of the sport. He played as an attacking midfielder and forward, known for his incredible dribbling, vision, and ability to score spectacular goals."},
		{"messi", "biography", "Lionel Messi is an Argentine professional footballer who plays as a forward. He has won numerous Ballon d'Or awards and is considered one of the greatest players of all time, known for his speed, finishing, and playmaking abilities."},
		{"ronaldo", "biography", "Cristiano Ronaldo is a Portuguese professional footballer who plays as a forward. He is known for his incredible athleticism, goal-scoring ability, and has won multiple Champions League titles and Ballon d'Or awards."},
		{"kaka", "biography", "Kaká is a Brazilian former professional footballer who played as an attacking midfielder. He was known for his pace, technique, and ability to score from midfield. He won the Ballon d'Or in 2007."},
		{"pepguardiola", "coaching", "Pep Guardiola is a Spanish professional football manager and former player. As a manager, he is known for his tactical innovation, particularly his implementation of tiki-taka playing style."},
		{"alexferguson", "coaching", "Sir Alex Ferguson is a Scottish former football manager who managed Manchester United for 26 years. He is considered one of the greatest managers in football history, known for his man-management skills and tactical acumen."},
		{"jurgenklopp", "coaching", "Jürgen Klopp is a German professional football manager known for his energetic coaching style and his ability to develop young players. He has managed Liverpool and Borussia Dortmund with great success."},
		{"ancelotti", "coaching", "Carlo Ancelotti is an Italian professional football manager known for his calm demeanor and tactical flexibility. He has won the Champions League multiple times as both a player and manager."},
	}

	out := make([]Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, Document{
			ID:       d.character + "-" + d.topic,
			Content:  d.content,
			Metadata: map[string]string{"character": d.character, "topic": d.topic},
		})
	}
	return out
}
