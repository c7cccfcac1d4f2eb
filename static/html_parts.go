package static

// Страница собирается из трех частей: Part1, график, Part2, логи, Part3.
var (
	Part1 = `
    <!DOCTYPE html>
    <html>
    <head>
        <meta charset="utf-8">
        <title>Карта дозы</title>
		<style>
			:root {
				--bg: #1f1f1f;
				--panel: #1e1e1e;
				--field: #2b2b2b;
				--edge: #444;
				--text: #d3d3d3;
			}

			body {
				background-color: var(--bg);
				color: var(--text);
				font-family: Consolas, monospace;
				margin: 0;
				overflow: hidden;
			}

			#container {
				display: flex;
				height: 100vh;
			}

			#left-container {
				flex: 0 0 58%;
				padding: 10px 16px;
				box-sizing: border-box;
				overflow-y: auto;
			}

			#right-container {
				flex: 1;
				padding: 10px;
				box-sizing: border-box;
				border-left: 5px solid #757575;
				background-color: var(--panel);
				overflow: auto;
			}

			/* логи приходят уже размеченными span-ами */
			#logs {
				white-space: pre-wrap;
				word-wrap: break-word;
				font-size: 12px;
			}

			form {
				display: grid;
				grid-template-columns: max-content 220px;
				gap: 6px 12px;
				align-items: center;
				margin-bottom: 12px;
			}

			form .wide {
				grid-column: 1 / span 2;
			}

			input[type="number"],
			input[type="text"],
			input[type="submit"] {
				background-color: var(--field);
				color: var(--text);
				border: 1px solid var(--edge);
				padding: 5px;
				border-radius: 4px;
			}

			input[type="submit"]:hover {
				background-color: var(--edge);
				cursor: pointer;
			}

			h1 {
				font-size: 20px;
			}

			::-webkit-scrollbar {
				width: 8px;
			}

			::-webkit-scrollbar-thumb {
				background-color: var(--edge);
				border-radius: 10px;
			}

			::-webkit-scrollbar-track {
				background-color: var(--field);
			}
        </style>
    </head>
    <body>
        <div id="container">
            <div id="left-container">
                <h1>Параметры карты дозы</h1>
                <form id="diagram-form" method="POST">
                    <label for="width">Ширина поля (W)</label>
                    <input type="number" id="width" name="width" value="1000" min="100" max="5000">
                    <label for="height">Высота поля (H)</label>
                    <input type="number" id="height" name="height" value="1000" min="100" max="5000">
                    <label for="stations">Детекторов (n)</label>
                    <input type="number" id="stations" name="stations" value="12" min="1" max="1000">
                    <label for="beam">Ширина пучка, доля W</label>
                    <input type="number" id="beam" name="beam" value="0.25" min="0.01" max="2" step="0.01">
                    <label for="file">Файл измерения</label>
                    <input type="text" id="file" name="file" placeholder="имя в --data-dir">
                    <label class="wide"><input type="checkbox" name="random" value="true"> Случайная расстановка</label>
                    <label class="wide"><input type="checkbox" name="voronoi" value="true"> Ячейки Вороного</label>
                    <input class="wide" type="submit" value="Построить">
                </form>
    `

	Part2 = `
            </div>
            <div id="right-container">
                <h1>Логи</h1>
                <div id="logs">`

	Part3 = `
                </div>
            </div>
        </div>

        <script>
            // форма отправляется без перезагрузки, ответ заменяет страницу целиком
            document.getElementById('diagram-form').addEventListener('submit', function (e) {
                e.preventDefault();
                const params = new URLSearchParams(new FormData(this)).toString();

                fetch('/', {
                    method: 'POST',
                    body: params,
                    headers: {'Content-Type': 'application/x-www-form-urlencoded'}
                })
                .then(response => {
                    if (response.status === 429) {
                        throw new Error('Слишком много запросов, попробуйте позже');
                    }
                    if (!response.ok) {
                        throw new Error('Ошибка при отправке данных');
                    }
                    return response.text();
                })
                .then(html => {
                    document.open();
                    document.write(html);
                    document.close();
                })
                .catch(error => {
                    document.getElementById('logs').textContent = error.message;
                });
            });
        </script>
    </body>
    </html>
    `
)
