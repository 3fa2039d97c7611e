package interview

// HelpText lists the commands available during the interview.
const HelpText = `Comandi disponibili:
- fine/exit: Termina l'intervista
- skip/salta: Salta la domanda corrente
- aiuto/help/?: Mostra questo messaggio di aiuto
- "cambiamo argomento, parliamo di X": Cambia il topic corrente a X
- "Non mi interessa questa domanda": Indica che la domanda non è rilevante
- "Chiedimi invece X": Suggerisci una domanda alternativa
- "La domanda è troppo generica": Chiedi una nuova domanda che tenga conto del tuo commento
- "inseriamo nelle guideline che X": Aggiungi X alle linee guida
- "mostra guideline": Visualizza le linee guida attuali`
